package records

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DeathReportLabel は死亡報告モデルのラベルです。
const DeathReportLabel = "adverse_event.deathreport"

// DeathReport は有害事象の死亡報告レコードです。
type DeathReport struct {
	ID             string
	SubjectID      string
	ReportDatetime time.Time
	DeathDatetime  time.Time
	CauseOfDeath   string
	Narrative      string
}

// PK は主キーを返します。
func (r *DeathReport) PK() string { return r.ID }

// SubjectIdentifier は被験者識別子を返します。
func (r *DeathReport) SubjectIdentifier() string { return r.SubjectID }

// ModelLabel はモデルラベルを返します。
func (r *DeathReport) ModelLabel() string { return DeathReportLabel }

// FetchDeathReport は主キーから死亡報告を検索します。
func FetchDeathReport(ctx context.Context, pool *pgxpool.Pool, pk string) (Record, error) {
	const query = `
		SELECT id, subject_identifier, report_datetime, death_datetime,
		       cause_of_death, narrative
		FROM death_report
		WHERE id = $1`

	var report DeathReport
	err := pool.QueryRow(ctx, query, pk).Scan(
		&report.ID,
		&report.SubjectID,
		&report.ReportDatetime,
		&report.DeathDatetime,
		&report.CauseOfDeath,
		&report.Narrative,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("death report %s: %w", pk, ErrNotFound)
		}
		return nil, fmt.Errorf("death report %s: %w", pk, err)
	}
	return &report, nil
}
