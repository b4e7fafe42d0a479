// Package history persists chapterization runs to a local SQLite database so
// past exports can be inspected from the command line. Each run stores the
// book identity, aggregate counts, and a per-chapter outcome row. Retention is
// bounded: older runs are pruned beyond a configured keep count.
package history
