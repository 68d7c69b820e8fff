// Пакет analytics пересчитывает агрегированные представления из снимка
// заказов. Все функции чистые: ни случайности, ни текущего времени - дата
// берётся только из самих заказов, поэтому результат воспроизводим бит в бит.
package analytics

import (
	"sort"
	"time"

	"thirtymeals/internal/constants"
	"thirtymeals/internal/models"
)

var weekdayNames = [7]string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// Compute строит AnalyticsView по снимку заказов. Непустой userID ограничивает
// выборку заказами этого пользователя (личная аналитика); пустой - все заказы
// (админская сводка).
func Compute(orders []models.Order, userID string) models.AnalyticsView {
	// Дата нормализуется до календарного дня один раз, здесь: все производные
	// представления дальше видят одинаковые ключи. Снимок вызывающего не трогаем.
	filtered := make([]models.Order, 0, len(orders))
	for _, o := range orders {
		if userID != "" && o.UserID != userID {
			continue
		}
		if len(o.Date) > len(constants.DATE_LAYOUT) {
			o.Date = o.Date[:len(constants.DATE_LAYOUT)]
		}
		filtered = append(filtered, o)
	}

	mealsByDate := groupByDate(filtered)

	view := models.AnalyticsView{
		MealsUsed:         len(filtered),
		MostPopularChoice: mostPopularChoice(filtered),
		ChartData:         chartData(mealsByDate),
		CalendarData:      mealsByDate,
		WeekChartData:     weekChartData(filtered),
		Streaks:           streaks(mealsByDate),
		RecentOrders:      recentOrders(filtered, userID != ""),
	}

	// Пропущенные слоты считаем только в личном представлении: из двух
	// возможных приёмов пищи в активный день вычитаем заказанные.
	if userID != "" {
		skipped := 2*len(mealsByDate) - view.MealsUsed
		if skipped < 0 {
			skipped = 0
		}
		view.MealsSkipped = skipped
	}

	return view
}

// groupByDate группирует заказы по календарному дню, ключ - ISO "YYYY-MM-DD".
func groupByDate(orders []models.Order) map[string]int {
	byDate := make(map[string]int)
	for _, o := range orders {
		byDate[o.Date]++
	}
	return byDate
}

// chartData разворачивает mealsByDate в отсортированный по возрастанию даты
// ряд и оставляет хронологически последние 30 активных дней. Дни без заказов
// просто отсутствуют, нулями не заполняются.
func chartData(mealsByDate map[string]int) []models.ChartPoint {
	days := make([]string, 0, len(mealsByDate))
	for day := range mealsByDate {
		days = append(days, day)
	}
	sort.Strings(days)

	if len(days) > constants.CHART_DAYS_LIMIT {
		days = days[len(days)-constants.CHART_DAYS_LIMIT:]
	}

	points := make([]models.ChartPoint, 0, len(days))
	for _, day := range days {
		label := day
		if t, err := time.Parse(constants.DATE_LAYOUT, day); err == nil {
			label = t.Format("2 Jan")
		}
		points = append(points, models.ChartPoint{Label: label, Meals: mealsByDate[day]})
	}
	return points
}

// mostPopularChoice возвращает базу с максимумом заказов. Ничья разрешается
// в пользу встреченной первой; пустая выборка даёт "N/A".
func mostPopularChoice(orders []models.Order) string {
	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for i, o := range orders {
		if _, ok := counts[o.MealChoice]; !ok {
			firstSeen[o.MealChoice] = i
		}
		counts[o.MealChoice]++
	}

	best := "N/A"
	bestCount := 0
	for choice, n := range counts {
		if n > bestCount || (n == bestCount && firstSeen[choice] < firstSeen[best]) {
			best = choice
			bestCount = n
		}
	}
	return best
}

// weekChartData раскладывает заказы по семи корзинам дней недели.
// Всегда отдаёт все 7 корзин в порядке Sun..Sat, пустые - с нулём.
func weekChartData(orders []models.Order) []models.WeekBucket {
	var counts [7]int
	for _, o := range orders {
		t, err := time.Parse(constants.DATE_LAYOUT, o.Date)
		if err != nil {
			continue
		}
		counts[int(t.Weekday())]++
	}

	buckets := make([]models.WeekBucket, 7)
	for i := 0; i < 7; i++ {
		buckets[i] = models.WeekBucket{Name: weekdayNames[i], Meals: counts[i]}
	}
	return buckets
}

// streaks считает серии подряд идущих активных дней. Серия непрерывна, когда
// зазор между соседними активными днями ровно один календарный день. Длина
// меряется в днях, а не в приёмах пищи.
func streaks(mealsByDate map[string]int) models.Streaks {
	days := make([]time.Time, 0, len(mealsByDate))
	for day := range mealsByDate {
		if t, err := time.Parse(constants.DATE_LAYOUT, day); err == nil {
			days = append(days, t)
		}
	}
	if len(days) == 0 {
		return models.Streaks{}
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })

	maxRun, run := 1, 1
	for i := 1; i < len(days); i++ {
		if days[i].Sub(days[i-1]) == 24*time.Hour {
			run++
		} else {
			run = 1
		}
		if run > maxRun {
			maxRun = run
		}
	}
	// run после цикла - длина последней серии, то есть текущий стрик.
	return models.Streaks{Current: run, Max: maxRun}
}

// recentOrders - заказы по убыванию даты, первые N. Для личного представления
// N=5, для админского N=10. OTP доставки из выборки вычищается: это поле
// не предназначено для витрины.
func recentOrders(orders []models.Order, singleUser bool) []models.Order {
	recent := make([]models.Order, len(orders))
	copy(recent, orders)
	sort.SliceStable(recent, func(i, j int) bool { return recent[i].Date > recent[j].Date })

	limit := constants.RECENT_ORDERS_ADMIN
	if singleUser {
		limit = constants.RECENT_ORDERS_USER
	}
	if len(recent) > limit {
		recent = recent[:limit]
	}
	for i := range recent {
		recent[i].DeliveryOtp = ""
	}
	return recent
}
