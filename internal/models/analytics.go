package models

// ChartPoint - точка графика "заказы по дням".
type ChartPoint struct {
	Label string `json:"label"`
	Meals int    `json:"meals"`
}

// WeekBucket - корзина одного дня недели (Sun..Sat).
type WeekBucket struct {
	Name  string `json:"name"`
	Meals int    `json:"meals"`
}

// Streaks - текущая и максимальная серии подряд идущих активных дней.
type Streaks struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// AnalyticsView - производное представление, пересчитывается на каждый запрос
// из живого снимка заказов. Не персистится.
type AnalyticsView struct {
	MealsUsed         int            `json:"mealsUsed"`
	MealsSkipped      int            `json:"mealsSkipped"`
	MostPopularChoice string         `json:"mostPopularChoice"`
	ChartData         []ChartPoint   `json:"chartData"`
	CalendarData      map[string]int `json:"calendarData"`
	WeekChartData     []WeekBucket   `json:"weekChartData"`
	Streaks           Streaks        `json:"streaks"`
	RecentOrders      []Order        `json:"recentOrders"`
}

// TimeSuggestion - ответ внешнего советника по времени уведомлений.
// Контракт корректности ограничен формой схемы.
type TimeSuggestion struct {
	SuggestedTime string `json:"suggestedTime"`
	Rationale     string `json:"rationale"`
}
