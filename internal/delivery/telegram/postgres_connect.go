package telegram

import (
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	postgresConnectAttemptsDefault = 20
	postgresConnectDelayDefault    = 2 * time.Second
)

// openPostgresWithRetry keeps dialing until postgres is reachable.
// Container setups regularly start the bot before the database accepts
// connections. When the target database itself is missing it is created
// once through the server's default "postgres" database.
func openPostgresWithRetry(dsn string) (*sql.DB, error) {
	attempts := getenvInt("POSTGRES_CONNECT_MAX_ATTEMPTS", postgresConnectAttemptsDefault)
	delaySeconds := getenvInt("POSTGRES_CONNECT_RETRY_SECONDS", int(postgresConnectDelayDefault/time.Second))
	delay := time.Duration(delaySeconds) * time.Second
	if attempts <= 0 {
		attempts = postgresConnectAttemptsDefault
	}
	if delay <= 0 {
		delay = postgresConnectDelayDefault
	}

	var lastErr error
	created := false
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := sql.Open("postgres", dsn)
		if err == nil {
			if pingErr := db.Ping(); pingErr == nil {
				return db, nil
			} else {
				err = pingErr
			}
		}
		if db != nil {
			_ = db.Close()
		}
		lastErr = err
		if !created && isDatabaseMissingError(err) {
			if createErr := createMissingDatabase(dsn); createErr == nil {
				created = true
				continue
			} else {
				lastErr = createErr
			}
		}
		if attempt < attempts {
			log.Printf("[DB] postgres not ready (attempt %d/%d): %v", attempt, attempts, err)
			time.Sleep(delay)
		}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("postgres connection failed")
	}
	return nil, lastErr
}

// createMissingDatabase connects to the server's "postgres" database
// with the same credentials and issues CREATE DATABASE for the target.
func createMissingDatabase(dsn string) error {
	info, ok := parsePostgresDSN(dsn)
	if !ok || info.dbName == "" {
		return fmt.Errorf("cannot derive database name from dsn")
	}

	admin, err := sql.Open("postgres", info.withDatabase("postgres"))
	if err != nil {
		return err
	}
	defer admin.Close()
	if err := admin.Ping(); err != nil {
		return err
	}

	quoted := `"` + strings.ReplaceAll(info.dbName, `"`, `""`) + `"`
	if _, err := admin.Exec("CREATE DATABASE " + quoted); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "already exists") {
			return nil
		}
		return err
	}
	log.Printf("[DB] created missing database %s", info.dbName)
	return nil
}

type postgresDSNInfo struct {
	user     string
	password string
	host     string
	port     string
	dbName   string
	sslMode  string
}

// parsePostgresDSN understands both URL and key=value DSN forms.
func parsePostgresDSN(dsn string) (postgresDSNInfo, bool) {
	dsn = strings.TrimSpace(dsn)
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil || u.Host == "" {
			return postgresDSNInfo{}, false
		}
		info := postgresDSNInfo{
			host:    u.Hostname(),
			port:    u.Port(),
			dbName:  strings.TrimPrefix(u.Path, "/"),
			sslMode: u.Query().Get("sslmode"),
		}
		if u.User != nil {
			info.user = u.User.Username()
			info.password, _ = u.User.Password()
		}
		return info.withDefaults(), true
	}

	info := postgresDSNInfo{}
	for _, part := range strings.Fields(dsn) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) != 2 {
			continue
		}
		val := strings.Trim(kv[1], `"'`)
		switch strings.ToLower(kv[0]) {
		case "user":
			info.user = val
		case "password":
			info.password = val
		case "host":
			info.host = val
		case "port":
			info.port = val
		case "dbname", "database":
			info.dbName = val
		case "sslmode":
			info.sslMode = val
		}
	}
	if info.host == "" && info.dbName == "" {
		return postgresDSNInfo{}, false
	}
	return info.withDefaults(), true
}

func (p postgresDSNInfo) withDefaults() postgresDSNInfo {
	if p.port == "" {
		p.port = "5432"
	}
	if p.sslMode == "" {
		p.sslMode = "disable"
	}
	return p
}

// withDatabase renders the DSN back as a URL pointing at another database.
func (p postgresDSNInfo) withDatabase(dbName string) string {
	u := url.URL{
		Scheme: "postgres",
		Host:   net.JoinHostPort(p.host, p.port),
		Path:   "/" + dbName,
	}
	if p.user != "" {
		if p.password != "" {
			u.User = url.UserPassword(p.user, p.password)
		} else {
			u.User = url.User(p.user)
		}
	}
	q := u.Query()
	q.Set("sslmode", p.sslMode)
	u.RawQuery = q.Encode()
	return u.String()
}

func isDatabaseMissingError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database") && strings.Contains(msg, "does not exist")
}

func getenvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
