package chat

import (
	"context"
	"log"
	"time"

	"thirtymeals/internal/models"
)

// Poller - явная запланированная задача опроса вместо таймеров, привязанных
// к жизни интерфейса. Каждый тик - независимый запрос; ответы, пришедшие
// позже более нового, отбрасываются по отметке времени самого свежего
// сообщения, а не по длине выборки.
type Poller struct {
	interval time.Duration
	fetch    func(ctx context.Context, since time.Time) ([]models.Message, error)
	onNew    func(msgs []models.Message)

	lastSeen time.Time
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewPoller создаёт опросчик. fetch получает отметку последнего увиденного
// сообщения; onNew вызывается только для действительно новых сообщений.
func NewPoller(interval time.Duration, fetch func(ctx context.Context, since time.Time) ([]models.Message, error), onNew func(msgs []models.Message)) *Poller {
	return &Poller{
		interval: interval,
		fetch:    fetch,
		onNew:    onNew,
		lastSeen: time.Now(),
	}
}

// Start запускает цикл опроса в отдельной горутине.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})

	go func() {
		defer close(p.done)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				p.tick(ctx)
			}
		}
	}()
	log.Printf("Опросчик чата запущен, интервал %s.", p.interval)
}

func (p *Poller) tick(ctx context.Context) {
	msgs, err := p.fetch(ctx, p.lastSeen)
	if err != nil {
		log.Printf("Poller: ошибка опроса сообщений: %v", err)
		return
	}

	// Отбрасываем устаревшие ответы: интересны только сообщения новее
	// последнего увиденного на начало тика. Сообщения одной рассылки делят
	// отметку времени, поэтому порог фиксируется до итерации.
	seen := p.lastSeen
	fresh := msgs[:0:0]
	for _, m := range msgs {
		if m.Timestamp.After(seen) {
			fresh = append(fresh, m)
			if m.Timestamp.After(p.lastSeen) {
				p.lastSeen = m.Timestamp
			}
		}
	}
	if len(fresh) > 0 && p.onNew != nil {
		p.onNew(fresh)
	}
}

// Stop останавливает цикл и дожидается выхода горутины. Запрос в полёте
// не прерывается - новые просто не выдаются.
func (p *Poller) Stop() {
	if p.cancel != nil {
		p.cancel()
		<-p.done
	}
}
