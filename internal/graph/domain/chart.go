package domain

// FileType classifies a chart file by its path.
type FileType string

const (
	FileTypeChart    FileType = "chart"
	FileTypeValues   FileType = "values"
	FileTypeTemplate FileType = "template"
	FileTypeHelper   FileType = "helper"
	FileTypeNotes    FileType = "notes"
	FileTypeOther    FileType = "other"
)

// Scanned reports whether files of this type are scanned for references.
func (t FileType) Scanned() bool {
	return t == FileTypeTemplate || t == FileTypeHelper || t == FileTypeNotes
}

// HelmFile is a single relevant file of a chart, keyed by its normalized path.
type HelmFile struct {
	Path    string   `json:"path"`
	Name    string   `json:"name"`
	Type    FileType `json:"type"`
	Content string   `json:"content"`
}

// HelperDefinition is a named template block found in a helper file.
type HelperDefinition struct {
	Name    string `json:"name"`
	File    string `json:"file"`
	Line    int    `json:"line"`
	Content string `json:"content"`
}

// Dependency is an entry of the Chart.yaml dependencies list.
type Dependency struct {
	Name       string `json:"name" yaml:"name"`
	Version    string `json:"version" yaml:"version"`
	Repository string `json:"repository,omitempty" yaml:"repository,omitempty"`
	Condition  string `json:"condition,omitempty" yaml:"condition,omitempty"`
	Alias      string `json:"alias,omitempty" yaml:"alias,omitempty"`
}

// Maintainer is an entry of the Chart.yaml maintainers list.
type Maintainer struct {
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
}

// ChartMetadata is the parsed content of Chart.yaml.
type ChartMetadata struct {
	APIVersion   string            `json:"apiVersion" yaml:"apiVersion"`
	Name         string            `json:"name" yaml:"name"`
	Version      string            `json:"version" yaml:"version"`
	KubeVersion  string            `json:"kubeVersion,omitempty" yaml:"kubeVersion,omitempty"`
	Description  string            `json:"description,omitempty" yaml:"description,omitempty"`
	Type         string            `json:"type,omitempty" yaml:"type,omitempty"`
	AppVersion   string            `json:"appVersion,omitempty" yaml:"appVersion,omitempty"`
	Home         string            `json:"home,omitempty" yaml:"home,omitempty"`
	Icon         string            `json:"icon,omitempty" yaml:"icon,omitempty"`
	Keywords     []string          `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Sources      []string          `json:"sources,omitempty" yaml:"sources,omitempty"`
	Maintainers  []Maintainer      `json:"maintainers,omitempty" yaml:"maintainers,omitempty"`
	Deprecated   bool              `json:"deprecated,omitempty" yaml:"deprecated,omitempty"`
	Annotations  map[string]string `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Dependencies []Dependency      `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// Defaults used when a chart has no Chart.yaml.
const (
	UnknownChartName    = "unknown-chart"
	UnknownChartVersion = "0.0.0"
	DefaultAPIVersion   = "v2"
)

// StubChartMetadata returns the metadata substituted for a missing Chart.yaml.
func StubChartMetadata() ChartMetadata {
	return ChartMetadata{
		APIVersion: DefaultAPIVersion,
		Name:       UnknownChartName,
		Version:    UnknownChartVersion,
	}
}

// HelmChart is the aggregate produced by one parse of a chart's files.
// It is rebuilt wholesale on every parse.
type HelmChart struct {
	Name         string             `json:"name"`
	Version      string             `json:"version"`
	Description  string             `json:"description,omitempty"`
	Files        []HelmFile         `json:"files"`
	Values       *ValuesData        `json:"values,omitempty"`
	ChartYAML    ChartMetadata      `json:"chartYaml"`
	References   []Reference        `json:"references"`
	Helpers      []HelperDefinition `json:"helpers"`
	Dependencies []Dependency       `json:"dependencies"`
}

// ChartFile returns the Chart.yaml file of the chart, if one was ingested.
func (c HelmChart) ChartFile() (HelmFile, bool) {
	return c.firstOfType(FileTypeChart)
}

// ValuesFile returns the values.yaml file of the chart, if one was ingested.
func (c HelmChart) ValuesFile() (HelmFile, bool) {
	return c.firstOfType(FileTypeValues)
}

func (c HelmChart) firstOfType(t FileType) (HelmFile, bool) {
	for _, f := range c.Files {
		if f.Type == t {
			return f, true
		}
	}
	return HelmFile{}, false
}

// HelperByName returns the helper definition with the given name.
func (c HelmChart) HelperByName(name string) (HelperDefinition, bool) {
	for _, h := range c.Helpers {
		if h.Name == name {
			return h, true
		}
	}
	return HelperDefinition{}, false
}

// ReferenceCounts counts the chart's references by type, including the
// files and capabilities references that never become graph edges.
func (c HelmChart) ReferenceCounts() map[ReferenceType]int {
	counts := make(map[ReferenceType]int)
	for _, r := range c.References {
		counts[r.Type]++
	}
	return counts
}
