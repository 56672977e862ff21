package adminapi

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/labstack/echo/v4"
	"github.com/visionmark/visionmark/internal/domain"
	"github.com/visionmark/visionmark/internal/webserver"
	"gorm.io/gorm"
)

// SystemInfo database and media overview of the back office
type SystemInfo struct {
	AppID           string           `json:"app_id"`
	DatabaseType    string           `json:"database_type"`
	DatabaseVersion string           `json:"database_version"`
	DatabaseSize    string           `json:"database_size"`
	TableCount      int              `json:"table_count"`
	Records         map[string]int64 `json:"records"`
	MediaFiles      int              `json:"media_files"`
	MediaSize       string           `json:"media_size"`
	ServerTime      string           `json:"server_time"`
}

func registerSystemRoutes() {
	webserver.ApiGET("/system/info", getSystemInfo)
	webserver.ApiGET("/system/backup", backupDatabase)
	webserver.ApiPOST("/system/media/cleanup", cleanupMedia)
	webserver.ApiGET("/system/logs", listOperationLogs)
}

type tabler interface {
	TableName() string
}

func domainTables() []string {
	names := make([]string, 0, len(domain.Tables))
	for _, t := range domain.Tables {
		if tn, ok := t.(tabler); ok {
			names = append(names, tn.TableName())
		}
	}
	return names
}

func getSystemInfo(c echo.Context) error {
	db := GetDB(c)
	dbType := db.Dialector.Name()
	info := SystemInfo{
		AppID:        GetAppContext(c).Config().System.Appid,
		DatabaseType: dbType,
		Records:      make(map[string]int64),
		ServerTime:   time.Now().Format("2006-01-02 15:04:05"),
	}

	var tableNames []string
	switch dbType {
	case "postgres":
		db.Raw(`SELECT table_name FROM information_schema.tables WHERE table_schema = 'public'`).Scan(&tableNames)
		db.Raw("SELECT version()").Scan(&info.DatabaseVersion)
		var size int64
		db.Raw("SELECT pg_database_size(current_database())").Scan(&size)
		info.DatabaseSize = humanize.Bytes(uint64(size))
	case "sqlite":
		db.Raw(`SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`).Scan(&tableNames)
		var version string
		db.Raw("SELECT sqlite_version()").Scan(&version)
		info.DatabaseVersion = "SQLite " + version
		var pageCount, pageSize int64
		db.Raw("PRAGMA page_count").Scan(&pageCount)
		db.Raw("PRAGMA page_size").Scan(&pageSize)
		info.DatabaseSize = humanize.Bytes(uint64(pageCount * pageSize))
	}
	info.TableCount = len(tableNames)

	for _, name := range domainTables() {
		var n int64
		if err := db.Table(name).Count(&n).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to count "+name, err.Error())
		}
		info.Records[name] = n
	}

	files, size, err := GetAppContext(c).Media().Usage()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "MEDIA_ERROR", "Failed to scan media", err.Error())
	}
	info.MediaFiles = files
	info.MediaSize = humanize.Bytes(uint64(size))
	return ok(c, info)
}

// backupDatabase streams a SQL script that restores the content tables into
// a schema created by the migrations.
func backupDatabase(c echo.Context) error {
	db := GetDB(c)
	dbType := db.Dialector.Name()
	tables := domainTables()

	var dump strings.Builder
	dump.WriteString("-- Visionmark content backup\n")
	dump.WriteString(fmt.Sprintf("-- Generated at: %s\n", time.Now().Format("2006-01-02 15:04:05")))
	dump.WriteString(fmt.Sprintf("-- Database type: %s\n\n", dbType))

	for i := len(tables) - 1; i >= 0; i-- {
		dump.WriteString(fmt.Sprintf("DELETE FROM %s;\n", quoteIdent(tables[i])))
	}
	dump.WriteString("\n")

	for i, name := range tables {
		inserts, err := tableInserts(db, domain.Tables[i], name)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "BACKUP_FAILED", "Failed to dump "+name, err.Error())
		}
		dump.WriteString(fmt.Sprintf("-- Table: %s\n", name))
		dump.WriteString(inserts)
		dump.WriteString("\n")
	}

	logOperation(c, "backup_database", "downloaded a database backup")
	filename := fmt.Sprintf("visionmark_backup_%s.sql", time.Now().Format("20060102_150405"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%s", filename))
	return c.Blob(http.StatusOK, "application/sql", []byte(dump.String()))
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func tableColumns(db *gorm.DB, model interface{}, rows []map[string]interface{}) []string {
	var columns []string
	if types, err := db.Migrator().ColumnTypes(model); err == nil {
		for _, ct := range types {
			columns = append(columns, ct.Name())
		}
	}
	if len(columns) == 0 && len(rows) > 0 {
		for k := range rows[0] {
			columns = append(columns, k)
		}
		sort.Strings(columns)
	}
	return columns
}

func tableInserts(db *gorm.DB, model interface{}, name string) (string, error) {
	var rows []map[string]interface{}
	if err := db.Table(name).Order("id").Find(&rows).Error; err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "", nil
	}
	columns := tableColumns(db, model, rows)
	quoted := make([]string, len(columns))
	for i, col := range columns {
		quoted[i] = quoteIdent(col)
	}

	var sb strings.Builder
	for _, row := range rows {
		values := make([]string, len(columns))
		for i, col := range columns {
			values[i] = sqlLiteral(row[col])
		}
		sb.WriteString(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s);\n",
			quoteIdent(name), strings.Join(quoted, ", "), strings.Join(values, ", ")))
	}
	return sb.String(), nil
}

// sqlLiteral formats a scanned value as a SQL literal
func sqlLiteral(val interface{}) string {
	switch v := val.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case []byte:
		return "'" + strings.ReplaceAll(string(v), "'", "''") + "'"
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%d", v)
	case float32, float64:
		return fmt.Sprintf("%v", v)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return "'" + v.Format("2006-01-02 15:04:05.999999-07:00") + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprintf("%v", v), "'", "''") + "'"
	}
}

func cleanupMedia(c echo.Context) error {
	removed, err := GetAppContext(c).CleanupMedia()
	if err != nil {
		return fail(c, http.StatusInternalServerError, "MEDIA_ERROR", "Media cleanup failed", err.Error())
	}
	logOperation(c, "cleanup_media", fmt.Sprintf("removed %d orphaned media files", removed))
	return ok(c, map[string]interface{}{"removed": removed})
}

func listOperationLogs(c echo.Context) error {
	page, pageSize := parsePagination(c)
	db := searchLike(GetDB(c).Model(&domain.SysOprLog{}), c.QueryParam("q"), "opr_name", "opt_action", "opt_desc")
	if action := strings.TrimSpace(c.QueryParam("action")); action != "" {
		db = db.Where("opt_action = ?", action)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query logs", err.Error())
	}
	var logs []domain.SysOprLog
	if err := db.Order("opt_time DESC").Offset((page - 1) * pageSize).Limit(pageSize).Find(&logs).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query logs", err.Error())
	}
	return paged(c, logs, total, page, pageSize)
}
