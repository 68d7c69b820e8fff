package store

import (
	"context"
	"log"

	"thirtymeals/internal/models"
)

// ListCatalog возвращает весь каталог сабджи.
func (s *Store) ListCatalog(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, description FROM menu_items ORDER BY name ASC")
	if err != nil {
		log.Printf("ListCatalog: ошибка запроса каталога: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var it models.MenuItem
		if errScan := rows.Scan(&it.ID, &it.Name, &it.Description); errScan != nil {
			log.Printf("ListCatalog: ошибка сканирования позиции: %v", errScan)
			continue
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// AddCatalogItem добавляет новую позицию в каталог.
func (s *Store) AddCatalogItem(ctx context.Context, it models.MenuItem) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO menu_items (id, name, description) VALUES ($1, $2, $3)",
		it.ID, it.Name, it.Description)
	if err != nil {
		log.Printf("AddCatalogItem: ошибка добавления позиции %s: %v", it.Name, err)
	}
	return err
}

// SetTodaysMenu целиком заменяет "меню на сегодня" переданным упорядоченным
// списком позиций каталога. Семантика последней записи: кто сохранил
// последним, тот и прав.
func (s *Store) SetTodaysMenu(ctx context.Context, itemIDs []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		log.Printf("SetTodaysMenu: Ошибка начала транзакции: %v", err)
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, "DELETE FROM todays_menu"); err != nil {
		log.Printf("SetTodaysMenu: ошибка очистки меню: %v", err)
		return err
	}
	for i, id := range itemIDs {
		if _, err = tx.ExecContext(ctx,
			"INSERT INTO todays_menu (position, item_id) VALUES ($1, $2)", i, id); err != nil {
			log.Printf("SetTodaysMenu: ошибка вставки позиции %s: %v", id, err)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		log.Printf("SetTodaysMenu: Ошибка фиксации транзакции: %v", err)
		return err
	}
	log.Printf("Меню на сегодня заменено: %d позиций.", len(itemIDs))
	return nil
}

// GetTodaysMenu возвращает "меню на сегодня" в сохранённом порядке.
func (s *Store) GetTodaysMenu(ctx context.Context) ([]models.MenuItem, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT mi.id, mi.name, mi.description
        FROM todays_menu tm
        JOIN menu_items mi ON mi.id = tm.item_id
        ORDER BY tm.position ASC`)
	if err != nil {
		log.Printf("GetTodaysMenu: ошибка запроса меню: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var it models.MenuItem
		if errScan := rows.Scan(&it.ID, &it.Name, &it.Description); errScan != nil {
			log.Printf("GetTodaysMenu: ошибка сканирования позиции: %v", errScan)
			continue
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
