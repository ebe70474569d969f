package services

import (
	"archive/zip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"

	"pbi_migration/internal/models"
	"pbi_migration/internal/repositories"
)

// ParserService extracts normalized metadata from a Tableau workbook
// (.twb XML, or .twbx archive containing one). Tableau namespaces vary
// between versions, so all lookups match on the local tag name only.
type ParserService struct {
	logger    zerolog.Logger
	parsedDir string
	cache     *repositories.CacheRepository
}

// NewParserService builds the parser. cache may be nil; parsed metadata is
// then served from disk only.
func NewParserService(logger zerolog.Logger, parsedDir string, cache *repositories.CacheRepository) *ParserService {
	return &ParserService{logger: logger, parsedDir: parsedDir, cache: cache}
}

// ParseWorkbook parses the uploaded workbook and writes
// <reportID>_parsed_meta.json into the parsed directory. It returns the
// metadata and the output path.
func (s *ParserService) ParseWorkbook(ctx context.Context, inputPath, reportID string) (*models.ParsedMeta, string, error) {
	xmlData, err := s.readWorkbookXML(inputPath)
	if err != nil {
		return nil, "", err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(xmlData); err != nil {
		return nil, "", fmt.Errorf("failed to parse workbook XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, "", fmt.Errorf("workbook %q contains no XML document", inputPath)
	}

	baseName := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	reportName := extractWorkbookTitle(root)
	if reportName == "" {
		reportName = baseName
	}

	meta := &models.ParsedMeta{
		ReportID:      reportID,
		ReportName:    reportName,
		GeneratedAt:   time.Now().UTC().Format(time.RFC3339),
		Datasources:   extractDatasources(root),
		Tables:        extractTablesAndColumns(root),
		Relationships: extractRelationships(root),
		Worksheets:    extractWorksheets(root),
		Dashboards:    extractDashboards(root),
		Measures:      extractMeasures(root),
		Connections:   extractConnections(root),
	}

	outPath := filepath.Join(s.parsedDir, reportID+"_parsed_meta.json")
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode parsed metadata: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return nil, "", fmt.Errorf("failed to write parsed metadata: %w", err)
	}

	if s.cache != nil {
		key := repositories.ParsedMetaKeyPrefix + reportID
		if err := s.cache.StoreJSON(ctx, key, meta); err != nil {
			s.logger.Warn().Err(err).Str("key", key).Msg("failed to cache parsed metadata")
		}
	}

	s.logger.Info().
		Str("report_id", reportID).
		Str("output", outPath).
		Int("tables", len(meta.Tables)).
		Int("measures", len(meta.Measures)).
		Msg("workbook parsed")

	return meta, outPath, nil
}

// LoadParsedMeta returns previously parsed metadata for a report, from the
// cache when possible, otherwise from the parsed directory.
func (s *ParserService) LoadParsedMeta(ctx context.Context, reportID string) (*models.ParsedMeta, error) {
	if s.cache != nil {
		var cached models.ParsedMeta
		hit, err := s.cache.GetJSON(ctx, repositories.ParsedMetaKeyPrefix+reportID, &cached)
		if err != nil {
			s.logger.Warn().Err(err).Str("report_id", reportID).Msg("parsed metadata cache lookup failed")
		} else if hit {
			return &cached, nil
		}
	}

	path := filepath.Join(s.parsedDir, reportID+"_parsed_meta.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("parsed metadata for report %q not found: %w", reportID, err)
	}

	var meta models.ParsedMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("invalid parsed metadata %q: %w", path, err)
	}
	return &meta, nil
}

func (s *ParserService) readWorkbookXML(inputPath string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(inputPath)) {
	case ".twb":
		data, err := os.ReadFile(inputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read workbook %q: %w", inputPath, err)
		}
		return data, nil
	case ".twbx":
		return s.extractTWBFromArchive(inputPath)
	default:
		return nil, fmt.Errorf("input must be a .twb or .twbx workbook, got %q", filepath.Base(inputPath))
	}
}

// extractTWBFromArchive returns the content of the first .twb entry inside
// the .twbx zip archive.
func (s *ParserService) extractTWBFromArchive(twbxPath string) ([]byte, error) {
	archive, err := zip.OpenReader(twbxPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook archive %q: %w", twbxPath, err)
	}
	defer archive.Close()

	for _, entry := range archive.File {
		if !strings.HasSuffix(strings.ToLower(entry.Name), ".twb") {
			continue
		}
		rc, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("failed to open archive entry %q: %w", entry.Name, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read archive entry %q: %w", entry.Name, err)
		}
		s.logger.Debug().Str("entry", entry.Name).Msg("extracted workbook from archive")
		return data, nil
	}

	return nil, fmt.Errorf("no .twb file found inside %q", twbxPath)
}

// walkElements visits every element under root (root excluded) depth-first.
func walkElements(root *etree.Element, visit func(*etree.Element)) {
	for _, child := range root.ChildElements() {
		visit(child)
		walkElements(child, visit)
	}
}

// findByTag returns every descendant whose local tag name is one of tags.
func findByTag(root *etree.Element, tags ...string) []*etree.Element {
	var found []*etree.Element
	walkElements(root, func(e *etree.Element) {
		for _, tag := range tags {
			if e.Tag == tag {
				found = append(found, e)
				return
			}
		}
	})
	return found
}

// findByTagContains returns every descendant whose local tag name contains
// one of the substrings.
func findByTagContains(root *etree.Element, substrings ...string) []*etree.Element {
	var found []*etree.Element
	walkElements(root, func(e *etree.Element) {
		for _, sub := range substrings {
			if strings.Contains(e.Tag, sub) {
				found = append(found, e)
				return
			}
		}
	})
	return found
}

func firstAttr(e *etree.Element, keys ...string) string {
	for _, key := range keys {
		if v := e.SelectAttrValue(key, ""); v != "" {
			return v
		}
	}
	return ""
}

func elementText(e *etree.Element) string {
	return strings.TrimSpace(e.Text())
}

func extractWorkbookTitle(root *etree.Element) string {
	if title := root.SelectAttrValue("name", ""); title != "" {
		return title
	}
	for _, tag := range []string{"document-name", "title"} {
		if nodes := findByTag(root, tag); len(nodes) > 0 {
			return elementText(nodes[0])
		}
	}
	return ""
}

func extractDatasources(root *etree.Element) []models.Datasource {
	datasources := []models.Datasource{}
	seen := map[string]bool{}

	for _, ds := range findByTag(root, "datasource", "data-source") {
		id := firstAttr(ds, "name", "caption", "formula", "id", "datasource-id", "class")
		if id == "" {
			id = fmt.Sprintf("datasource_%d", len(datasources)+1)
		}
		if seen[id] {
			// Tableau workbooks sometimes repeat datasource blocks.
			continue
		}
		seen[id] = true

		entry := models.Datasource{
			ID:   id,
			Name: firstAttr(ds, "caption", "name"),
		}

		if conns := findByTag(ds, "connection", "connection-info", "connectionType"); len(conns) > 0 {
			conn := conns[0]
			entry.ConnectionType = firstAttr(conn, "class", "connection-class", "type")
			info := map[string]string{}
			for _, attr := range conn.Attr {
				info[attr.Key] = attr.Value
			}
			for _, child := range conn.ChildElements() {
				if text := elementText(child); text != "" {
					info[child.Tag] = text
				}
			}
			entry.Connection = info
		}

		for _, node := range findByTagContains(ds, "custom-sql", "customsql", "query", "sql") {
			if text := elementText(node); text != "" {
				entry.Query = text
				break
			}
		}

		datasources = append(datasources, entry)
	}

	return datasources
}

// extractTablesAndColumns gathers column elements and groups them by the
// enclosing datasource, falling back to "_unnamed" when no table can be
// inferred. Explicit <table> nodes are merged in afterwards.
func extractTablesAndColumns(root *etree.Element) []models.TableMeta {
	order := []string{}
	tables := map[string]*models.TableMeta{}

	addColumn := func(tableName, colName, colType string) {
		if tableName == "" {
			tableName = "_unnamed"
		}
		table, ok := tables[tableName]
		if !ok {
			table = &models.TableMeta{Name: tableName}
			tables[tableName] = table
			order = append(order, tableName)
		}
		table.Columns = append(table.Columns, models.ColumnSpec{Name: colName, Type: colType})
	}

	for _, col := range findByTag(root, "column", "column-instance", "column-group", "column-definition") {
		name := firstAttr(col, "caption", "name", "column-name")
		if name == "" {
			name = elementText(col)
		}
		if name == "" {
			continue
		}

		tableName := col.SelectAttrValue("table", "")
		if tableName == "" {
			for parent := col.Parent(); parent != nil; parent = parent.Parent() {
				if parent.Tag == "datasource" || parent.Tag == "data-source" {
					tableName = firstAttr(parent, "name", "caption")
					break
				}
			}
		}

		addColumn(tableName, name, firstAttr(col, "datatype", "type", "data-type"))
	}

	for _, tbl := range findByTag(root, "table") {
		name := firstAttr(tbl, "name", "caption")
		if name == "" {
			continue
		}
		for _, col := range findByTag(tbl, "column") {
			colName := firstAttr(col, "name", "caption")
			if colName == "" {
				colName = elementText(col)
			}
			if colName != "" {
				addColumn(name, colName, firstAttr(col, "datatype", "type"))
			}
		}
		if _, ok := tables[name]; !ok {
			tables[name] = &models.TableMeta{Name: name}
			order = append(order, name)
		}
	}

	result := make([]models.TableMeta, 0, len(order))
	for _, name := range order {
		result = append(result, *tables[name])
	}
	return result
}

func extractMeasures(root *etree.Element) []models.MeasureMeta {
	measures := []models.MeasureMeta{}
	seen := map[string]bool{}

	for _, node := range findByTagContains(root, "calculation", "calculated", "formula") {
		name := firstAttr(node, "caption", "name", "field-name")

		expr := elementText(node)
		if expr == "" {
			if attr := firstAttr(node, "formula", "expression"); attr != "" {
				expr = attr
			} else {
				for _, nested := range findByTagContains(node, "formula", "expression", "calculation") {
					if text := elementText(nested); text != "" {
						expr = text
						break
					}
				}
			}
		}

		if name == "" && expr == "" {
			continue
		}
		key := name + "|" + expr
		if seen[key] {
			continue
		}
		seen[key] = true
		measures = append(measures, models.MeasureMeta{Name: name, Expression: expr})
	}

	return measures
}

func extractWorksheets(root *etree.Element) []models.Worksheet {
	sheets := []models.Worksheet{}
	seen := map[string]bool{}

	for _, ws := range findByTag(root, "worksheet", "view", "sheet") {
		name := firstAttr(ws, "name", "caption")
		if name == "" {
			if nodes := findByTag(ws, "name", "caption"); len(nodes) > 0 {
				name = elementText(nodes[0])
			}
		}
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		visuals := []models.Visual{}
		vizNodes := findByTagContains(ws, "mark", "viz", "view", "worksheet")
		// Cap the visual nodes per sheet; deep workbooks explode otherwise.
		if len(vizNodes) > 10 {
			vizNodes = vizNodes[:10]
		}
		for _, viz := range vizNodes {
			vtype := firstAttr(viz, "type", "class")
			if vtype == "" {
				vtype = viz.Tag
			}
			fields := []string{}
			for _, f := range findByTag(viz, "field", "column", "ref", "attribute") {
				fname := firstAttr(f, "name", "caption")
				if fname == "" {
					fname = elementText(f)
				}
				if fname != "" {
					fields = append(fields, fname)
				}
			}
			visuals = append(visuals, models.Visual{
				ID:     viz.SelectAttrValue("id", ""),
				Type:   vtype,
				Title:  firstAttr(viz, "title", "caption"),
				Fields: fields,
			})
		}

		sheets = append(sheets, models.Worksheet{Name: name, Visuals: visuals})
	}

	return sheets
}

func extractDashboards(root *etree.Element) []models.Dashboard {
	dashboards := []models.Dashboard{}

	for _, d := range findByTag(root, "dashboard") {
		name := firstAttr(d, "name", "caption")
		if name == "" {
			name = elementText(d)
		}
		if name == "" {
			continue
		}

		items := []models.DashboardItem{}
		for _, item := range findByTagContains(d, "zone", "worksheet", "view", "object") {
			ref := firstAttr(item, "sheet", "worksheet", "source")
			if ref == "" {
				ref = elementText(item)
			}
			items = append(items, models.DashboardItem{
				ID:   item.SelectAttrValue("id", ""),
				Ref:  ref,
				Type: item.Tag,
			})
		}

		dashboards = append(dashboards, models.Dashboard{Name: name, Items: items})
	}

	return dashboards
}

func extractRelationships(root *etree.Element) []models.RelationshipSpec {
	rels := []models.RelationshipSpec{}

	for _, j := range findByTag(root, "relation", "join", "relationship") {
		rels = append(rels, models.RelationshipSpec{
			FromTable:   firstAttr(j, "left-table", "from-table", "table1", "left"),
			FromColumn:  firstAttr(j, "left-column", "from-column", "left-field"),
			ToTable:     firstAttr(j, "right-table", "to-table", "table2", "right"),
			ToColumn:    firstAttr(j, "right-column", "to-column", "right-field"),
			Cardinality: firstAttr(j, "cardinality", "type"),
		})
	}

	return rels
}

func extractConnections(root *etree.Element) []map[string]string {
	conns := []map[string]string{}
	seen := map[string]bool{}

	for _, c := range findByTag(root, "connection", "connection-info") {
		info := map[string]string{}
		for _, attr := range c.Attr {
			info[attr.Key] = attr.Value
		}
		for _, child := range c.ChildElements() {
			if text := elementText(child); text != "" {
				if _, ok := info[child.Tag]; !ok {
					info[child.Tag] = text
				}
			}
		}

		// json.Marshal sorts map keys, which makes it a stable signature
		// for de-duplication.
		signature, err := json.Marshal(info)
		if err != nil || seen[string(signature)] {
			continue
		}
		seen[string(signature)] = true
		conns = append(conns, info)
	}

	return conns
}
