package storage

const schema = `
-- One scheduling record per (owner, item). Timestamps are RFC3339 text;
-- ease is stored as REAL (well above the 2-decimal contract).
CREATE TABLE IF NOT EXISTS reviews (
    owner_id         TEXT NOT NULL,
    item_id          TEXT NOT NULL,
    due_at           TEXT NOT NULL,
    ease_factor      REAL NOT NULL,
    interval_days    INTEGER NOT NULL,
    repetition_count INTEGER NOT NULL,
    last_grade       TEXT NOT NULL,
    last_reviewed_at TEXT,

    PRIMARY KEY (owner_id, item_id)
);

CREATE INDEX IF NOT EXISTS idx_reviews_due ON reviews(owner_id, due_at);

-- Append-only grading history.
CREATE TABLE IF NOT EXISTS review_log (
    id       TEXT PRIMARY KEY,
    owner_id TEXT NOT NULL,
    item_id  TEXT NOT NULL,
    grade    TEXT NOT NULL,
    at       TEXT NOT NULL
);

-- The catalog: studyable cards and where they came from.
CREATE TABLE IF NOT EXISTS cards (
    item_id    TEXT PRIMARY KEY,
    question   TEXT NOT NULL,
    answer     TEXT NOT NULL,
    context    TEXT,
    difficulty INTEGER NOT NULL DEFAULT 3,
    source_id  INTEGER,

    FOREIGN KEY(source_id) REFERENCES sources(id)
);

CREATE TABLE IF NOT EXISTS sources (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    path         TEXT NOT NULL UNIQUE,
    type         TEXT NOT NULL DEFAULT 'local', -- 'local' or 'git'
    last_scanned TEXT
);
`
