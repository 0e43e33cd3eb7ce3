package store

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
)

// Table names.
const (
	tableSegments  = "segments"
	tableGroups    = "groups"
	tableSubjects  = "subjects"
	tableQuestions = "questions"
	tableOptions   = "question_options"
	tableTags      = "question_tags"
	tablePapers    = "papers"
	tableEntries   = "paper_entries"
	tableLLMEvents = "llm_request_events"
)

// schema is applied in order on every Open. Statements are idempotent.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS segments (
		id       TEXT PRIMARY KEY,
		name     TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS "groups" (
		id         TEXT PRIMARY KEY,
		segment_id TEXT NOT NULL REFERENCES segments(id) ON DELETE CASCADE,
		name       TEXT NOT NULL,
		position   INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS groups_segment ON "groups"(segment_id)`,
	`CREATE TABLE IF NOT EXISTS subjects (
		id       TEXT PRIMARY KEY,
		group_id TEXT NOT NULL REFERENCES "groups"(id) ON DELETE CASCADE,
		name     TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS subjects_group ON subjects(group_id)`,
	`CREATE TABLE IF NOT EXISTS questions (
		id          TEXT PRIMARY KEY,
		seq         INTEGER NOT NULL,
		parent_id   TEXT REFERENCES questions(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL DEFAULT 0,
		"type"      TEXT NOT NULL,
		body        TEXT NOT NULL,
		marks       INTEGER NOT NULL DEFAULT 0,
		explanation TEXT NOT NULL DEFAULT '',
		segment_id  TEXT,
		group_id    TEXT,
		subject_id  TEXT,
		created_at  INTEGER NOT NULL,
		updated_at  INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS questions_parent_seq ON questions(parent_id, seq)`,
	`CREATE TABLE IF NOT EXISTS question_options (
		question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		text        TEXT NOT NULL,
		is_correct  INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (question_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS question_tags (
		question_id TEXT NOT NULL REFERENCES questions(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		tag         TEXT NOT NULL,
		PRIMARY KEY (question_id, position)
	)`,
	`CREATE INDEX IF NOT EXISTS question_tags_tag ON question_tags(tag)`,
	`CREATE TABLE IF NOT EXISTS papers (
		id              TEXT PRIMARY KEY,
		seq             INTEGER NOT NULL,
		title           TEXT NOT NULL,
		institute_label TEXT NOT NULL DEFAULT '',
		duration        TEXT NOT NULL DEFAULT '',
		instructions    TEXT NOT NULL DEFAULT '',
		total_marks     INTEGER NOT NULL,
		created_at      INTEGER NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS paper_entries (
		paper_id    TEXT NOT NULL REFERENCES papers(id) ON DELETE CASCADE,
		position    INTEGER NOT NULL,
		question_id TEXT NOT NULL,
		marks       INTEGER NOT NULL,
		snapshot    TEXT NOT NULL,
		PRIMARY KEY (paper_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS llm_request_events (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		seq           INTEGER NOT NULL,
		timestamp     INTEGER NOT NULL,
		provider      TEXT NOT NULL DEFAULT '',
		model         TEXT NOT NULL DEFAULT '',
		purpose       TEXT NOT NULL DEFAULT '',
		input_tokens  INTEGER NOT NULL DEFAULT 0,
		output_tokens INTEGER NOT NULL DEFAULT 0,
		latency_ms    INTEGER NOT NULL DEFAULT 0,
		success       INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		request_body  TEXT NOT NULL DEFAULT '',
		response_body TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS global_sequence (
		id       INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`,
	`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`,
}

func migrate(ctx context.Context, drv dialect.ExecQuerier) error {
	for i, stmt := range schema {
		if err := drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("statement %d: %w", i, err)
		}
	}
	return nil
}
