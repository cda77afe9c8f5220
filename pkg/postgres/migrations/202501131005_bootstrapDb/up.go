package _202501131005_bootstrapDb

import (
	"database/sql"
	"fmt"

	"gorm.io/gorm"
)

type Migration struct {
}

func (m *Migration) Up(db *sql.DB, grm *gorm.DB) error {
	queries := []string{
		`create table if not exists users (
			user_id bigint not null primary key,
			username varchar not null,
			role varchar not null default 'user',
			balance numeric not null default 0,
			refresh_token varchar,
			created_at timestamp with time zone default current_timestamp,
			updated_at timestamp with time zone default current_timestamp
		);`,
		`create table if not exists killmails (
			killmail_id bigint not null primary key,
			victim_name varchar not null,
			victim_alliance varchar,
			victim_corporation varchar not null,
			ship_type_id bigint not null,
			points bigint not null default 0,
			defensive boolean not null default true,
			accounted boolean not null default false,
			created_at timestamp with time zone default current_timestamp
		);`,
		`create table if not exists killmail_participants (
			killmail_id bigint not null,
			user_id bigint not null,
			primary key (killmail_id, user_id)
		);`,
		`create table if not exists adm_systems (
			solar_system_id bigint not null primary key,
			name varchar not null,
			adm_level double precision not null default 0,
			updated_at timestamp with time zone default current_timestamp
		);`,
		`create table if not exists adm_users (
			user_id bigint not null primary key,
			last_updated timestamp with time zone
		);`,
		`create table if not exists settings (
			id bigserial primary key,
			path varchar not null,
			value varchar not null
		);`,
		`create index if not exists idx_settings_path on settings (path);`,
		`create index if not exists idx_killmails_accounted on killmails (accounted);`,
	}

	for _, query := range queries {
		if res := grm.Exec(query); res.Error != nil {
			fmt.Printf("Failed to execute query: %s\n", query)
			return res.Error
		}
	}
	return nil
}

func (m *Migration) GetName() string {
	return "202501131005_bootstrapDb"
}
