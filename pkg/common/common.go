package common

import (
	"os"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var (
	snode     *snowflake.Node
	snodeOnce sync.Once
)

func idNode() *snowflake.Node {
	snodeOnce.Do(func() {
		var err error
		snode, err = snowflake.NewNode(1)
		if err != nil {
			zap.S().Fatal(err)
		}
	})
	return snode
}

// UUIDint64 returns a time-ordered unique id for new records.
func UUIDint64() int64 {
	return idNode().Generate().Int64()
}

// HashPassword bcrypt-hashes an operator password.
func HashPassword(password string) (string, error) {
	bs, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

// CheckPassword reports whether password matches the stored bcrypt hash.
func CheckPassword(hashed, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(password)) == nil
}

func IsEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

func FileExists(file string) bool {
	info, err := os.Stat(file)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

func IfEmptyStr(src string, defval string) string {
	if strings.TrimSpace(src) == "" {
		return defval
	}
	return src
}
