package domain

import "strconv"

// ReferenceType is the expression family a reference was matched by.
type ReferenceType string

const (
	RefValues       ReferenceType = "values"
	RefInclude      ReferenceType = "include"
	RefTemplate     ReferenceType = "template"
	RefChart        ReferenceType = "chart"
	RefRelease      ReferenceType = "release"
	RefFiles        ReferenceType = "files"
	RefCapabilities ReferenceType = "capabilities"
)

// ReferenceTypes lists every reference type in display order.
var ReferenceTypes = []ReferenceType{
	RefValues, RefInclude, RefTemplate, RefChart, RefRelease, RefFiles, RefCapabilities,
}

// TargetKind is the kind of entity a reference points at.
type TargetKind string

const (
	TargetValue      TargetKind = "value"
	TargetHelper     TargetKind = "helper"
	TargetChart      TargetKind = "chart"
	TargetRelease    TargetKind = "release"
	TargetFile       TargetKind = "file"
	TargetCapability TargetKind = "capability"
)

// Kind returns the target kind for references of this type.
func (t ReferenceType) Kind() TargetKind {
	switch t {
	case RefValues:
		return TargetValue
	case RefInclude, RefTemplate:
		return TargetHelper
	case RefChart:
		return TargetChart
	case RefRelease:
		return TargetRelease
	case RefFiles:
		return TargetFile
	case RefCapabilities:
		return TargetCapability
	default:
		return ""
	}
}

// SourceLocation is where a reference was found.
type SourceLocation struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Target is what a reference resolves to.
type Target struct {
	Kind TargetKind `json:"kind"`
	Path string     `json:"path"`
}

// Reference records that a file line contains an expression resolving to a target.
type Reference struct {
	ID         string         `json:"id"`
	Type       ReferenceType  `json:"type"`
	Source     SourceLocation `json:"source"`
	Target     Target         `json:"target"`
	Expression string         `json:"expression"`
	Line       int            `json:"line"`
}

// NewReference builds a reference with its deterministic id. column is the
// 1-based byte column of the match start and keeps repeated matches on the
// same line apart.
func NewReference(refType ReferenceType, file string, line, column int, targetPath, expression string) Reference {
	return Reference{
		ID:         ReferenceID(file, line, column, refType, targetPath),
		Type:       refType,
		Source:     SourceLocation{File: file, Line: line},
		Target:     Target{Kind: refType.Kind(), Path: targetPath},
		Expression: expression,
		Line:       line,
	}
}

// ReferenceID derives a reference id from its location, type and target.
// Example: "ref:templates/deploy.yaml:3:14:values:replicaCount"
func ReferenceID(file string, line, column int, refType ReferenceType, targetPath string) string {
	return "ref:" + file + ":" + strconv.Itoa(line) + ":" + strconv.Itoa(column) + ":" + string(refType) + ":" + targetPath
}
