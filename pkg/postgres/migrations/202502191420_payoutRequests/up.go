package _202502191420_payoutRequests

import (
	"database/sql"
	"fmt"

	"gorm.io/gorm"
)

type Migration struct {
}

func (m *Migration) Up(db *sql.DB, grm *gorm.DB) error {
	queries := []string{
		`create table if not exists payout_requests (
			id bigserial primary key,
			user_id bigint not null,
			amount numeric not null default 0,
			status varchar not null default 'pending',
			created_at timestamp with time zone default current_timestamp
		);`,
		`create index if not exists idx_payout_requests_user_id on payout_requests (user_id);`,
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
	return "202502191420_payoutRequests"
}
