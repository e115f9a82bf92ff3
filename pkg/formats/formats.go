// Package formats provides parsers for the level data files: act files
// (entity list and block placement grid), numbered block JSON files and the
// entity animation table.
package formats
