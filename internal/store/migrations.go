package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    source        TEXT NOT NULL DEFAULT '',
    weights       TEXT NOT NULL DEFAULT '{}',
    keyword_count INTEGER NOT NULL DEFAULT 0,
    cluster_count INTEGER NOT NULL DEFAULT 0,
    idea_count    INTEGER NOT NULL DEFAULT 0,
    quick_wins    INTEGER NOT NULL DEFAULT 0,
    insights      TEXT NOT NULL DEFAULT '[]',
    alerted       BOOLEAN NOT NULL DEFAULT 0,
    created_at    DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);

CREATE TABLE IF NOT EXISTS scored_keywords (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id           INTEGER NOT NULL REFERENCES runs(id),
    position         INTEGER NOT NULL,
    keyword          TEXT NOT NULL,
    volume           INTEGER NOT NULL DEFAULT 0,
    difficulty       REAL NOT NULL DEFAULT 0,
    cpc              REAL NOT NULL DEFAULT 0,
    intents          TEXT NOT NULL DEFAULT '[]',
    volume_score     REAL NOT NULL DEFAULT 0,
    difficulty_score REAL NOT NULL DEFAULT 0,
    cpc_score        REAL NOT NULL DEFAULT 0,
    intent_score     REAL NOT NULL DEFAULT 0,
    opportunity      REAL NOT NULL DEFAULT 0,
    category         TEXT NOT NULL DEFAULT 'low',
    primary_intent   TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_keywords_run ON scored_keywords(run_id);
CREATE INDEX IF NOT EXISTS idx_keywords_opportunity ON scored_keywords(opportunity);
CREATE INDEX IF NOT EXISTS idx_keywords_category ON scored_keywords(category);

CREATE TABLE IF NOT EXISTS clusters (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id   INTEGER NOT NULL REFERENCES runs(id),
    position INTEGER NOT NULL,
    label    TEXT NOT NULL,
    score    REAL NOT NULL DEFAULT 0,
    keywords TEXT NOT NULL DEFAULT '[]'
);

CREATE INDEX IF NOT EXISTS idx_clusters_run ON clusters(run_id);

CREATE TABLE IF NOT EXISTS ideas (
    id                 INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id             INTEGER NOT NULL REFERENCES runs(id),
    position           INTEGER NOT NULL,
    title              TEXT NOT NULL,
    topic              TEXT NOT NULL DEFAULT '',
    content_type       TEXT NOT NULL,
    primary_keywords   TEXT NOT NULL DEFAULT '[]',
    secondary_keywords TEXT NOT NULL DEFAULT '[]',
    seo_score          REAL NOT NULL DEFAULT 0,
    traffic_score      REAL NOT NULL DEFAULT 0,
    combined_score     REAL NOT NULL DEFAULT 0,
    total_volume       INTEGER NOT NULL DEFAULT 0,
    avg_difficulty     REAL NOT NULL DEFAULT 0,
    avg_cpc            REAL NOT NULL DEFAULT 0,
    tips               TEXT NOT NULL DEFAULT '[]',
    outline            TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_ideas_run ON ideas(run_id);
CREATE INDEX IF NOT EXISTS idx_ideas_combined ON ideas(combined_score);

CREATE TABLE IF NOT EXISTS suggestions (
    phrase     TEXT NOT NULL,
    feed       TEXT NOT NULL,
    seen_count INTEGER NOT NULL DEFAULT 1,
    first_seen DATETIME NOT NULL,
    last_seen  DATETIME NOT NULL,
    PRIMARY KEY (phrase, feed)
);

CREATE INDEX IF NOT EXISTS idx_suggestions_seen ON suggestions(last_seen);
`
