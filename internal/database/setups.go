package database

import (
	"database/sql"
	"fmt"

	"github.com/tradejournal/trade-journal-service/internal/models"
)

// CreateSetup inserts a new trading setup
func (db *DB) CreateSetup(s *models.Setup) error {
	query := `
		INSERT INTO setups (user_id, name, description)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	err := db.conn.QueryRow(query, s.UserID, s.Name, nullString(s.Description)).Scan(&s.ID)
	if err != nil {
		return fmt.Errorf("failed to create setup: %w", err)
	}
	return nil
}

// ListSetups retrieves all of a user's setups
func (db *DB) ListSetups(userID int) ([]*models.Setup, error) {
	query := `
		SELECT id, user_id, name, description
		FROM setups
		WHERE user_id = $1
		ORDER BY name ASC
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query setups: %w", err)
	}
	defer rows.Close()

	var setups []*models.Setup
	for rows.Next() {
		var s models.Setup
		var description sql.NullString
		if err := rows.Scan(&s.ID, &s.UserID, &s.Name, &description); err != nil {
			return nil, fmt.Errorf("failed to scan setup: %w", err)
		}
		if description.Valid {
			s.Description = description.String
		}
		setups = append(setups, &s)
	}
	return setups, rows.Err()
}

// SetupNames returns an id-to-name map of a user's setups
func (db *DB) SetupNames(userID int) (map[int]string, error) {
	setups, err := db.ListSetups(userID)
	if err != nil {
		return nil, err
	}
	names := make(map[int]string, len(setups))
	for _, s := range setups {
		names[s.ID] = s.Name
	}
	return names, nil
}

// DeleteSetup removes one of a user's setups
func (db *DB) DeleteSetup(userID, id int) error {
	result, err := db.conn.Exec(`DELETE FROM setups WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete setup: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("setup not found: %d", id)
	}
	return nil
}

// CreateTag inserts a new tag
func (db *DB) CreateTag(tag *models.Tag) error {
	query := `
		INSERT INTO tags (user_id, name)
		VALUES ($1, $2)
		RETURNING id
	`
	err := db.conn.QueryRow(query, tag.UserID, tag.Name).Scan(&tag.ID)
	if err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// ListTags retrieves all of a user's tags
func (db *DB) ListTags(userID int) ([]*models.Tag, error) {
	query := `
		SELECT id, user_id, name
		FROM tags
		WHERE user_id = $1
		ORDER BY name ASC
	`
	rows, err := db.conn.Query(query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tags: %w", err)
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.UserID, &tag.Name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, &tag)
	}
	return tags, rows.Err()
}

// DeleteTag removes one of a user's tags
func (db *DB) DeleteTag(userID, id int) error {
	result, err := db.conn.Exec(`DELETE FROM tags WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("tag not found: %d", id)
	}
	return nil
}

// SetTradeTags replaces the tag links of a trade
func (db *DB) SetTradeTags(tradeID int, tagIDs []int) error {
	if _, err := db.conn.Exec(`DELETE FROM trade_tags WHERE trade_id = $1`, tradeID); err != nil {
		return fmt.Errorf("failed to clear trade tags: %w", err)
	}
	for _, tagID := range tagIDs {
		_, err := db.conn.Exec(
			`INSERT INTO trade_tags (trade_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			tradeID, tagID,
		)
		if err != nil {
			return fmt.Errorf("failed to link tag %d: %w", tagID, err)
		}
	}
	return nil
}

// GetTradeTagIDs retrieves the ids of the tags linked to a trade
func (db *DB) GetTradeTagIDs(tradeID int) ([]int, error) {
	rows, err := db.conn.Query(`SELECT tag_id FROM trade_tags WHERE trade_id = $1 ORDER BY tag_id`, tradeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query trade tags: %w", err)
	}
	defer rows.Close()

	var ids []int
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan trade tag: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
