package models

// DocumentType classifies a source document
type DocumentType string

const (
	DocRequirements DocumentType = "Requirements Document"
	DocArchitecture DocumentType = "Architecture Document"
	DocUserStories  DocumentType = "User Stories Document"
	DocAPI          DocumentType = "API Documentation"
	DocTest         DocumentType = "Test Documentation"
	DocMarkdown     DocumentType = "Markdown Document"
	DocText         DocumentType = "Text Document"
	DocUnknown      DocumentType = "Unknown Document Type"
)

// Section is a heading-delimited range of a document.
// LineStart is inclusive and LineEnd exclusive, both 0-based.
type Section struct {
	Title     string `json:"title"`
	Content   string `json:"content"`
	LineStart int    `json:"line_start"`
	LineEnd   int    `json:"line_end"`
}

// Analysis is the result of inspecting a source document
type Analysis struct {
	DocumentType  DocumentType `json:"document_type"`
	Summary       string       `json:"summary"`
	KeyElements   []string     `json:"key_elements"`
	Sections      []Section    `json:"sections"`
	ContentLength int          `json:"content_length"`
	LineCount     int          `json:"line_count"`
}
