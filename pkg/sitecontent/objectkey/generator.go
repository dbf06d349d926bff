package objectkey

import (
	"fmt"
	"math/rand/v2"
	"path"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Generator defines the interface for object key generation strategies.
// Keys are single path segments so they can be served as /uploads/{key}.
type Generator interface {
	// GenerateKey creates a storage key for an uploaded file
	GenerateKey(fileName string) string
}

// TimestampGenerator produces <unix-millis>-<random>-<name>, the naming the
// upload endpoint has always used.
type TimestampGenerator struct {
	Now    func() time.Time
	Random func() int64
}

func NewTimestampGenerator() *TimestampGenerator {
	return &TimestampGenerator{
		Now:    time.Now,
		Random: func() int64 { return rand.Int64N(1_000_000_000) },
	}
}

func (g *TimestampGenerator) GenerateKey(fileName string) string {
	return fmt.Sprintf("%d-%d-%s", g.Now().UnixMilli(), g.Random(), Sanitize(fileName))
}

// UUIDGenerator produces <uuid>_<name>. Useful for stores shared with other
// writers where timestamps could collide.
type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) GenerateKey(fileName string) string {
	return fmt.Sprintf("%s_%s", uuid.New(), Sanitize(fileName))
}

// CustomFuncGenerator allows users to provide their own key generation function
type CustomFuncGenerator struct {
	GenerateFunc func(fileName string) string
}

func NewCustomFuncGenerator(fn func(fileName string) string) *CustomFuncGenerator {
	return &CustomFuncGenerator{
		GenerateFunc: fn,
	}
}

func (g *CustomFuncGenerator) GenerateKey(fileName string) string {
	return g.GenerateFunc(fileName)
}

var (
	timestampPrefix = regexp.MustCompile(`^\d+-\d+-`)
	uuidPrefix      = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}_`)
)

// DisplayName strips the generated prefix from a key, giving back the name
// the file was uploaded with.
func DisplayName(key string) string {
	key = path.Base(key)
	if loc := timestampPrefix.FindStringIndex(key); loc != nil {
		return key[loc[1]:]
	}
	if loc := uuidPrefix.FindStringIndex(key); loc != nil {
		return key[loc[1]:]
	}
	return key
}

// Valid reports whether key is safe to use as a single path segment.
func Valid(key string) bool {
	if key == "" || key == "." || key == ".." {
		return false
	}
	return !strings.ContainsAny(key, "/\\\x00")
}

var filenameReplacer = strings.NewReplacer(
	"/", "_",
	"\\", "_",
	":", "_",
	"*", "_",
	"?", "_",
	"\"", "_",
	"<", "_",
	">", "_",
	"|", "_",
	" ", "_",
	"\x00", "_",
)

// Sanitize replaces characters that are unsafe in file names and URLs.
func Sanitize(fileName string) string {
	name := strings.TrimLeft(filenameReplacer.Replace(strings.TrimSpace(fileName)), ".")
	if name == "" {
		return "file"
	}
	return name
}
