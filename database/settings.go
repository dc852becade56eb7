package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"

	"github.com/mbolis/talentflow/model"
)

const (
	SettingSeeded = "db_seeded_v4"
	SettingTheme  = "theme"
)

const DefaultTheme = "discord-blue"

var Themes = []string{"discord-blue", "vintage-brown", "fairytale-pink", "classic-dark"}

// GetSetting returns the value of a setting and whether it is set at all.
func GetSetting(ctx context.Context, q Querier, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM setting WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, transient("db.get_setting", err)
	}
	return value, true, nil
}

func SetSetting(ctx context.Context, q Querier, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO setting (key, value) VALUES (?, ?)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return transient("db.set_setting", err)
	}
	return nil
}

func (s *Store) Theme(ctx context.Context) (string, error) {
	theme, ok, err := GetSetting(ctx, s.db, SettingTheme)
	if err != nil || !ok {
		return DefaultTheme, err
	}
	return theme, nil
}

func (s *Store) SetTheme(ctx context.Context, theme string) error {
	for _, known := range Themes {
		if theme == known {
			return SetSetting(ctx, s.db, SettingTheme, theme)
		}
	}
	return errors.Wrapf(model.ErrValidationFailed, "unknown theme %q", theme)
}
