package models

// ParsedMeta is the normalized metadata extracted from a Tableau workbook.
// It is the input to artifact generation.
type ParsedMeta struct {
	ReportID      string             `json:"reportId"`
	ReportName    string             `json:"report_name"`
	GeneratedAt   string             `json:"generatedAt"`
	Datasources   []Datasource       `json:"datasources"`
	Tables        []TableMeta        `json:"tables"`
	Relationships []RelationshipSpec `json:"relationships"`
	Worksheets    []Worksheet        `json:"worksheets"`
	Dashboards    []Dashboard        `json:"dashboards"`
	Measures      []MeasureMeta      `json:"measures"`
	Connections   []map[string]string `json:"connections"`
}

type Datasource struct {
	ID             string            `json:"id"`
	Name           string            `json:"name,omitempty"`
	ConnectionType string            `json:"connection_type,omitempty"`
	Connection     map[string]string `json:"connection,omitempty"`
	Query          string            `json:"query,omitempty"`
}

type TableMeta struct {
	Name    string       `json:"name"`
	Columns []ColumnSpec `json:"columns"`
}

type MeasureMeta struct {
	Name       string `json:"name"`
	Expression string `json:"expression,omitempty"`
}

type Worksheet struct {
	Name    string   `json:"name"`
	Visuals []Visual `json:"visuals"`
}

type Visual struct {
	ID     string   `json:"id,omitempty"`
	Type   string   `json:"type"`
	Title  string   `json:"title,omitempty"`
	Fields []string `json:"fields"`
}

type Dashboard struct {
	Name  string          `json:"name"`
	Items []DashboardItem `json:"items"`
}

type DashboardItem struct {
	ID   string `json:"id,omitempty"`
	Ref  string `json:"ref,omitempty"`
	Type string `json:"type"`
}
