package mysql

const insertSessionSQL = `
INSERT INTO sessions
  (id, preferences, trip, saved_poi_ids, status_message, created_at, updated_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

// Row lock for read-modify-write; must run inside a transaction.
const selectSessionForUpdateSQL = `
SELECT id, preferences, trip, saved_poi_ids, status_message, created_at, updated_at
FROM sessions
WHERE id = ?
FOR UPDATE
`

const getSessionSQL = `
SELECT id, preferences, trip, saved_poi_ids, status_message, created_at, updated_at
FROM sessions
WHERE id = ?
`

const updateSessionSQL = `
UPDATE sessions SET
  preferences    = ?,
  trip           = ?,
  saved_poi_ids  = ?,
  status_message = ?,
  updated_at     = ?
WHERE id = ?
`

const deleteSessionSQL = `DELETE FROM sessions WHERE id = ?`

const insertMissSQL = `
INSERT INTO status_misses (user_name, http_status, reason)
VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE
  http_status = VALUES(http_status),
  reason      = VALUES(reason),
  seen_at     = CURRENT_TIMESTAMP
`
