// Пакет schedule - запланированные рассылки на cron вместо таймеров,
// живущих в интерфейсе.
package schedule

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler оборачивает cron для ежедневных рассылок в заданное время.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler создаёт планировщик (ещё не запущенный).
func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Start запускает планировщик.
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Println("Планировщик рассылок запущен.")
}

// Stop останавливает планировщик и дожидается завершения запущенных задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ScheduleDaily регистрирует ежедневную задачу на время "15:04".
func (s *Scheduler) ScheduleDaily(at string, job func()) (cron.EntryID, error) {
	t, err := time.Parse("15:04", at)
	if err != nil {
		return 0, fmt.Errorf("некорректное время %q (ожидается ЧЧ:ММ): %w", at, err)
	}

	spec := fmt.Sprintf("%d %d * * *", t.Minute(), t.Hour())
	id, err := s.cron.AddFunc(spec, job)
	if err != nil {
		return 0, err
	}
	log.Printf("Задача запланирована ежедневно на %s (cron %q).", at, spec)
	return id, nil
}
