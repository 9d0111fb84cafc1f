package store

import (
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/dukerupert/hestia/internal/grocery"
	"github.com/dukerupert/hestia/internal/model"
)

// ListStore persists shopping lists and their items. Every method is scoped
// to the owning user; a list or item belonging to someone else behaves as
// if it did not exist.
type ListStore struct {
	db *sql.DB
}

func NewListStore(db *sql.DB) *ListStore {
	return &ListStore{db: db}
}

// --- List methods ---

func scanList(scanner interface{ Scan(...any) error }) (*model.ShoppingList, error) {
	var l model.ShoppingList
	err := scanner.Scan(&l.ID, &l.UserID, &l.Name, &l.Description, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	l.Items = []model.Item{}
	return &l, nil
}

const listCols = `id, user_id, name, description, created_at, updated_at`

func (s *ListStore) CreateList(userID int64, name, description string) (*model.ShoppingList, error) {
	result, err := s.db.Exec(
		`INSERT INTO shopping_lists (user_id, name, description) VALUES (?, ?, ?)`,
		userID, strings.TrimSpace(name), strings.TrimSpace(description),
	)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetList(id, userID)
}

// GetList returns the list with its items, or (nil, nil) when the user has no
// such list.
func (s *ListStore) GetList(id, userID int64) (*model.ShoppingList, error) {
	row := s.db.QueryRow(`SELECT `+listCols+` FROM shopping_lists WHERE id = ? AND user_id = ?`, id, userID)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get list: %w", err)
	}

	items, err := s.queryItems(`WHERE i.list_id = ? ORDER BY i.id ASC`, id)
	if err != nil {
		return nil, err
	}
	l.Items = items
	return l, nil
}

// ListLists returns every list the user owns, newest first, with items.
func (s *ListStore) ListLists(userID int64) ([]model.ShoppingList, error) {
	rows, err := s.db.Query(`SELECT `+listCols+` FROM shopping_lists WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	lists := []model.ShoppingList{}
	index := make(map[int64]int)
	for rows.Next() {
		l, err := scanList(rows)
		if err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		index[l.ID] = len(lists)
		lists = append(lists, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate lists: %w", err)
	}
	rows.Close()

	items, err := s.queryItems(`JOIN shopping_lists l ON l.id = i.list_id WHERE l.user_id = ? ORDER BY i.id ASC`, userID)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if idx, ok := index[item.ListID]; ok {
			lists[idx].Items = append(lists[idx].Items, item)
		}
	}
	return lists, nil
}

// UpdateList renames a list. It returns (nil, nil) when the user has no such list.
func (s *ListStore) UpdateList(id, userID int64, name, description string) (*model.ShoppingList, error) {
	result, err := s.db.Exec(
		`UPDATE shopping_lists SET name = ?, description = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND user_id = ?`,
		strings.TrimSpace(name), strings.TrimSpace(description), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update list: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetList(id, userID)
}

// DeleteList removes a list and, by cascade, its items.
func (s *ListStore) DeleteList(id, userID int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_lists WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("delete list: %w", err)
	}
	return nil
}

// --- Item methods ---

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var item model.Item
	var completed int
	err := scanner.Scan(
		&item.ID, &item.ListID, &item.Name, &item.Quantity, &item.Unit,
		&item.Category, &completed, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	item.Completed = completed != 0
	return &item, nil
}

const itemCols = `i.id, i.list_id, i.name, i.quantity, i.unit, i.category, i.completed, i.created_at, i.updated_at`

func (s *ListStore) queryItems(clause string, args ...any) ([]model.Item, error) {
	rows, err := s.db.Query(`SELECT `+itemCols+` FROM items i `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// withDefaults fills the quantity, unit and category an item is stored with
// when the caller leaves them blank.
func withDefaults(in model.NewItem) model.NewItem {
	in.Name = strings.TrimSpace(in.Name)
	in.Unit = strings.TrimSpace(in.Unit)
	if !(in.Quantity > 0) || math.IsInf(in.Quantity, 0) {
		in.Quantity = 1
	}
	if in.Unit == "" {
		in.Unit = "unit"
	}
	if c, ok := grocery.NormalizeCategory(in.Category); ok {
		in.Category = c
	} else {
		in.Category = grocery.CategoryOther
	}
	return in
}

func (s *ListStore) ownsList(q interface {
	QueryRow(string, ...any) *sql.Row
}, listID, userID int64) (bool, error) {
	var one int
	err := q.QueryRow(`SELECT 1 FROM shopping_lists WHERE id = ? AND user_id = ?`, listID, userID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check list owner: %w", err)
	}
	return true, nil
}

// CreateItem adds an item to a list. It returns (nil, nil) when the user has
// no such list.
func (s *ListStore) CreateItem(userID, listID int64, in model.NewItem) (*model.Item, error) {
	items, err := s.CreateItems(userID, listID, []model.NewItem{in})
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return &items[0], nil
}

// CreateItems adds all items in one transaction. Either every item is stored
// or none is. It returns (nil, nil) when the user has no such list.
func (s *ListStore) CreateItems(userID, listID int64, in []model.NewItem) ([]model.Item, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	ok, err := s.ownsList(tx, listID, userID)
	if err != nil || !ok {
		return nil, err
	}

	ids, err := insertItems(tx, listID, in)
	if err != nil {
		return nil, err
	}
	if _, err := tx.Exec(`UPDATE shopping_lists SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, listID); err != nil {
		return nil, fmt.Errorf("touch list: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.loadItems(ids, userID)
}

// CreateListWithItems creates a list and its items in one transaction, so a
// failed item leaves no empty list behind.
func (s *ListStore) CreateListWithItems(userID int64, name, description string, in []model.NewItem) (*model.ShoppingList, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec(
		`INSERT INTO shopping_lists (user_id, name, description) VALUES (?, ?, ?)`,
		userID, strings.TrimSpace(name), strings.TrimSpace(description),
	)
	if err != nil {
		return nil, fmt.Errorf("insert list: %w", err)
	}
	listID, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	if _, err := insertItems(tx, listID, in); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.GetList(listID, userID)
}

func insertItems(tx *sql.Tx, listID int64, in []model.NewItem) ([]int64, error) {
	stmt, err := tx.Prepare(`INSERT INTO items (list_id, name, quantity, unit, category) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, fmt.Errorf("prepare stmt: %w", err)
	}
	defer stmt.Close()

	ids := make([]int64, 0, len(in))
	for _, raw := range in {
		item := withDefaults(raw)
		result, err := stmt.Exec(listID, item.Name, item.Quantity, item.Unit, item.Category)
		if err != nil {
			return nil, fmt.Errorf("insert item %q: %w", item.Name, err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *ListStore) loadItems(ids []int64, userID int64) ([]model.Item, error) {
	items := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		item, err := s.GetItem(id, userID)
		if err != nil {
			return nil, err
		}
		if item != nil {
			items = append(items, *item)
		}
	}
	return items, nil
}

func (s *ListStore) GetItem(id, userID int64) (*model.Item, error) {
	row := s.db.QueryRow(
		`SELECT `+itemCols+` FROM items i JOIN shopping_lists l ON l.id = i.list_id WHERE i.id = ? AND l.user_id = ?`,
		id, userID,
	)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

const ownedItem = `id = ? AND list_id IN (SELECT id FROM shopping_lists WHERE user_id = ?)`

// UpdateItem overwrites every editable field. It returns (nil, nil) when the
// item is not on one of the user's lists.
func (s *ListStore) UpdateItem(id, userID int64, in model.NewItem, completed bool) (*model.Item, error) {
	in = withDefaults(in)
	result, err := s.db.Exec(
		`UPDATE items SET name = ?, quantity = ?, unit = ?, category = ?, completed = ?, updated_at = CURRENT_TIMESTAMP WHERE `+ownedItem,
		in.Name, in.Quantity, in.Unit, in.Category, boolToInt(completed), id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetItem(id, userID)
}

func (s *ListStore) DeleteItem(id, userID int64) error {
	_, err := s.db.Exec(`DELETE FROM items WHERE `+ownedItem, id, userID)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// ToggleCompleted flips the completed flag. It returns (nil, nil) when the
// item is not on one of the user's lists.
func (s *ListStore) ToggleCompleted(id, userID int64) (*model.Item, error) {
	result, err := s.db.Exec(
		`UPDATE items SET completed = 1 - completed, updated_at = CURRENT_TIMESTAMP WHERE `+ownedItem,
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("toggle item: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, nil
	}
	return s.GetItem(id, userID)
}

// ClearCompleted deletes the completed items of a list and reports how many
// were removed.
func (s *ListStore) ClearCompleted(listID, userID int64) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM items WHERE completed = 1 AND list_id IN (SELECT id FROM shopping_lists WHERE id = ? AND user_id = ?)`,
		listID, userID,
	)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// ExistingItems returns a snapshot of the user's items for reconciliation.
// When listIDs is non-empty only those lists are included.
func (s *ListStore) ExistingItems(userID int64, listIDs ...int64) ([]grocery.ExistingItem, error) {
	query := `SELECT i.name, i.category, i.completed FROM items i JOIN shopping_lists l ON l.id = i.list_id WHERE l.user_id = ?`
	args := []any{userID}
	if len(listIDs) > 0 {
		query += ` AND l.id IN (?` + strings.Repeat(`, ?`, len(listIDs)-1) + `)`
		for _, id := range listIDs {
			args = append(args, id)
		}
	}
	query += ` ORDER BY i.id ASC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("existing items: %w", err)
	}
	defer rows.Close()

	items := []grocery.ExistingItem{}
	for rows.Next() {
		var it grocery.ExistingItem
		var completed int
		if err := rows.Scan(&it.Name, &it.Category, &completed); err != nil {
			return nil, fmt.Errorf("scan existing item: %w", err)
		}
		it.Completed = completed != 0
		items = append(items, it)
	}
	return items, rows.Err()
}

// Stats summarizes the user's lists. FavoriteCategory is the most frequent
// item category, ties broken alphabetically, or "" with no items.
func (s *ListStore) Stats(userID int64) (*model.UserStats, error) {
	var stats model.UserStats
	err := s.db.QueryRow(`SELECT COUNT(*) FROM shopping_lists WHERE user_id = ?`, userID).Scan(&stats.TotalLists)
	if err != nil {
		return nil, fmt.Errorf("count lists: %w", err)
	}
	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM items i JOIN shopping_lists l ON l.id = i.list_id WHERE l.user_id = ?`,
		userID,
	).Scan(&stats.TotalItems)
	if err != nil {
		return nil, fmt.Errorf("count items: %w", err)
	}

	err = s.db.QueryRow(
		`SELECT i.category FROM items i JOIN shopping_lists l ON l.id = i.list_id
		 WHERE l.user_id = ?
		 GROUP BY i.category ORDER BY COUNT(*) DESC, i.category ASC LIMIT 1`,
		userID,
	).Scan(&stats.FavoriteCategory)
	if err != nil && err != sql.ErrNoRows {
		return nil, fmt.Errorf("favorite category: %w", err)
	}
	return &stats, nil
}

// HistorySuggestions returns up to limit item names the user has added most
// often, compared case-insensitively.
func (s *ListStore) HistorySuggestions(userID int64, limit int) ([]string, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT MIN(i.name) FROM items i JOIN shopping_lists l ON l.id = i.list_id
		 WHERE l.user_id = ?
		 GROUP BY lower(i.name) ORDER BY COUNT(*) DESC, lower(i.name) ASC LIMIT ?`,
		userID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("history suggestions: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan suggestion: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
