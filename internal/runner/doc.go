// Package runner drives virtual users through a scenario. Each virtual user
// owns one session and threads the newest snapshot through its steps; the
// session is terminated exactly once when the user finishes.
package runner
