// Package docsearch provides a local documentation knowledge base.
// It crawls documentation sources (GitBook sites, Docusaurus-style sites,
// raw markdown URLs and local directories) into a single JSON-backed index
// and answers ranked free-text queries against it.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, fs/, http/).
package docsearch
