// Package domain contains the core business entities of the language-learning
// API: users, saved vocabulary words, content sources, journal entries and
// lessons. It is independent of any specific infrastructure or delivery
// mechanism; scheduling rules for vocabulary reviews live in the srs subpackage.
package domain
