package storage

const schema = `
-- One row per todo. id is supplied by the caller and is not unique-enforced.
CREATE TABLE IF NOT EXISTS todo (
    id INTEGER,
    todo TEXT,
    priority TEXT,
    status TEXT,
    category TEXT,
    due_date TEXT -- YYYY-MM-DD
);

CREATE INDEX IF NOT EXISTS idx_todo_id ON todo(id);
CREATE INDEX IF NOT EXISTS idx_todo_due_date ON todo(due_date);
`
