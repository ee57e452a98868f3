package logger

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap/buffer"
	"go.uber.org/zap/zapcore"
)

const (
	colorReset = "\x1b[0m"
	colorBold  = "\x1b[1m"
)

// palette holds the ANSI colors of one theme
type palette struct {
	fg        string
	time      string
	component [3]string
	id        string
	number    string
	warn      string
	warnBg    string
	err       string
	errBg     string
}

// Gruvbox Dark (warm, muted)
var gruvbox = palette{
	fg:        "\x1b[38;5;223m",
	time:      "\x1b[38;5;108m",
	component: [3]string{"\x1b[38;5;208m", "\x1b[38;5;214m", "\x1b[38;5;142m"},
	id:        "\x1b[38;5;109m",
	number:    "\x1b[38;5;175m",
	warn:      "\x1b[38;5;214m",
	warnBg:    "\x1b[48;5;58m",
	err:       "\x1b[38;5;167m",
	errBg:     "\x1b[48;5;88m",
}

// Everforest Dark (forest greens)
var everforest = palette{
	fg:        "\x1b[38;5;223m",
	time:      "\x1b[38;5;107m",
	component: [3]string{"\x1b[38;5;108m", "\x1b[38;5;65m", "\x1b[38;5;208m"},
	id:        "\x1b[38;5;109m",
	number:    "\x1b[38;5;108m",
	warn:      "\x1b[38;5;179m",
	warnBg:    "\x1b[48;5;58m",
	err:       "\x1b[38;5;167m",
	errBg:     "\x1b[48;5;52m",
}

var currentTheme = "everforest"

// SetTheme configures the color scheme for console log output.
// Unknown names are ignored.
func SetTheme(theme string) {
	if theme == "everforest" || theme == "gruvbox" {
		currentTheme = theme
	}
}

func colors() palette {
	if currentTheme == "gruvbox" {
		return gruvbox
	}
	return everforest
}

// colorComponent hashes the name so a component keeps its color across lines
func colorComponent(name string) string {
	hash := 0
	for _, c := range name {
		hash += int(c)
	}
	return colors().component[hash%3]
}

// minimalEncoder implements a calm, compact console encoder with theme support.
// Format: "13:04:35  extract  wrote symbols  iso-valves 24 symbols 12ms"
//
// Context fields added with Logger.With are kept in the embedded map encoder
// and printed after the entry's own fields.
type minimalEncoder struct {
	*zapcore.MapObjectEncoder
}

func newMinimalEncoder() *minimalEncoder {
	return &minimalEncoder{MapObjectEncoder: zapcore.NewMapObjectEncoder()}
}

func (enc *minimalEncoder) Clone() zapcore.Encoder {
	clone := zapcore.NewMapObjectEncoder()
	for k, v := range enc.Fields {
		clone.Fields[k] = v
	}
	return &minimalEncoder{MapObjectEncoder: clone}
}

func (enc *minimalEncoder) EncodeEntry(ent zapcore.Entry, fields []zapcore.Field) (*buffer.Buffer, error) {
	c := colors()
	final := buffer.NewPool().Get()

	final.AppendString(c.time)
	final.AppendString(ent.Time.Format("15:04:05"))
	final.AppendString(colorReset)

	// Level only for non-info entries
	if ent.Level != zapcore.InfoLevel {
		final.AppendString("  ")
		final.AppendString(levelColorString(ent.Level))
	}

	if ent.LoggerName != "" {
		final.AppendString("  ")
		final.AppendString(colorComponent(ent.LoggerName))
		final.AppendString(ent.LoggerName)
		final.AppendString(colorReset)
	}

	final.AppendString("  ")
	final.AppendString(c.fg)
	final.AppendString(ent.Message)
	final.AppendString(colorReset)

	if values := formatFields(fields, enc.Fields); values != "" {
		final.AppendString("  ")
		final.AppendString(values)
	}

	final.AppendString("\n")
	return final, nil
}

// levelColorString returns bold + colored + background for WARN/ERROR
func levelColorString(level zapcore.Level) string {
	c := colors()
	switch level {
	case zapcore.DebugLevel:
		return c.id + "DEBUG" + colorReset
	case zapcore.WarnLevel:
		return colorBold + c.warnBg + c.warn + "WARN" + colorReset
	default:
		return colorBold + c.errBg + c.err + level.CapitalString() + colorReset
	}
}

// formatFields renders every field. Nothing is dropped: well-known keys get
// compact formatting, everything else is printed as key=value.
func formatFields(fields []zapcore.Field, context map[string]interface{}) string {
	entry := zapcore.NewMapObjectEncoder()
	var order []string
	for _, f := range fields {
		before := len(entry.Fields)
		f.AddTo(entry)
		if len(entry.Fields) != before {
			order = append(order, f.Key)
		}
	}

	var ctxKeys []string
	for k := range context {
		if _, dup := entry.Fields[k]; !dup {
			ctxKeys = append(ctxKeys, k)
		}
	}
	sort.Strings(ctxKeys)

	var values []string
	for _, k := range order {
		values = append(values, formatField(k, entry.Fields[k]))
	}
	for _, k := range ctxKeys {
		values = append(values, formatField(k, context[k]))
	}
	return strings.Join(values, " ")
}

func formatField(key string, value interface{}) string {
	c := colors()
	val := fmt.Sprint(value)
	switch key {
	case FieldFamily, FieldFile:
		return c.id + val + colorReset
	case FieldDurationMS:
		return c.number + val + colorReset + "ms"
	case FieldCount:
		return c.number + val + colorReset + " symbols"
	default:
		return key + "=" + val
	}
}
