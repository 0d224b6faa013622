/*
 * Copyright 2025 SREDiag Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package hwinfo

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"sync"
	"time"
)

type logger struct {
	name      string
	callDepth int
}

var (
	internalLogger = &logger{"hwinfo", 3}

	logMu  sync.Mutex
	logOut io.Writer = os.Stderr
	level            = LevelWarn

	magenta = string([]byte{27, 91, 57, 53, 109}) // Trace
	green   = string([]byte{27, 91, 57, 50, 109}) // Debug
	blue    = string([]byte{27, 91, 57, 52, 109}) // Info
	yellow  = string([]byte{27, 91, 57, 51, 109}) // Warn
	red     = string([]byte{27, 91, 57, 49, 109}) // Error
	reset   = string([]byte{27, 91, 48, 109})

	colors    = []string{magenta, green, blue, yellow, red}
	levelName = []string{"Trace", "Debug", "Info", "Warn", "Error"}
)

// Log levels accepted by SetLogLevel.
const (
	LevelTrace = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelNoPrint
)

// SetLogLevel changes the package logger's level. The default is LevelWarn.
func SetLogLevel(l int) {
	if l < LevelTrace || l > LevelNoPrint {
		return
	}
	logMu.Lock()
	level = l
	logMu.Unlock()
}

// SetLogOutput redirects the package logger. nil restores os.Stderr.
func SetLogOutput(w io.Writer) {
	if w == nil {
		w = os.Stderr
	}
	logMu.Lock()
	logOut = w
	logMu.Unlock()
}

func (l *logger) logf(lv int, format string, a ...interface{}) {
	logMu.Lock()
	defer logMu.Unlock()
	if level > lv {
		return
	}
	if _, err := fmt.Fprintf(logOut, l.prefix(lv)+format+reset+"\n", a...); err != nil {
		fmt.Fprintf(os.Stderr, "hwinfo logger failed: %v\n", err)
	}
}

func (l *logger) errorf(format string, a ...interface{}) { l.logf(LevelError, format, a...) }

func (l *logger) warnf(format string, a ...interface{}) { l.logf(LevelWarn, format, a...) }

func (l *logger) infof(format string, a ...interface{}) { l.logf(LevelInfo, format, a...) }

func (l *logger) debugf(format string, a ...interface{}) { l.logf(LevelDebug, format, a...) }

func (l *logger) tracef(format string, a ...interface{}) { l.logf(LevelTrace, format, a...) }

func (l *logger) prefix(lv int) string {
	var buffer [64]byte
	buf := bytes.NewBuffer(buffer[:0])
	_, _ = buf.WriteString(colors[lv])
	_, _ = buf.WriteString(levelName[lv])
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(time.Now().Format("2006-01-02 15:04:05.999999"))
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(l.location())
	_ = buf.WriteByte(' ')
	_, _ = buf.WriteString(l.name)
	_ = buf.WriteByte(' ')
	return buf.String()
}

// location reports the caller of errorf/warnf/...: logf and the level
// helper sit between it and prefix.
func (l *logger) location() string {
	_, file, line, ok := runtime.Caller(l.callDepth + 1)
	if !ok {
		file = "???"
		line = 0
	}
	return filepath.Base(file) + ":" + strconv.Itoa(line)
}
