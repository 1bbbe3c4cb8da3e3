package mysql

const insertReviewSQL = `
INSERT INTO reviews
  (title, summary, rating, ip_address, company, reviewer, user_id)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

// users is managed by the identity service; we only read the display name.
const selectReviewColumns = `
SELECT
  r.id,
  r.title,
  r.summary,
  r.rating,
  r.ip_address,
  r.company,
  r.reviewer,
  r.user_id,
  u.username,
  r.created_at
FROM reviews r
JOIN users u ON u.id = r.user_id
`

const getReviewSQL = selectReviewColumns + `WHERE r.id = ?`

const listReviewsByOwnerSQL = selectReviewColumns + `WHERE r.user_id = ?
ORDER BY r.id`
