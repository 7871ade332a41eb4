// Package snipminer harvests publicly shared code fragments from GitHub
// gists and Stack Overflow pages and normalizes them into language-tagged
// snippet records.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, goquery/, rod/).
package snipminer
