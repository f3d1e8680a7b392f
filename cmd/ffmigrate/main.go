// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// ffmigrate backs up Firefox profiles and rewrites every stored reference to
// an old domain suffix into a new one across the profile's stores. Run it
// only while the browser is closed, and take a backup before any real run.
package main

import (
	"context"
	"os"

	"github.com/rs/zerolog"
)

func main() {
	ctx := context.Background()

	cmd := NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fatalLogger(cmd.Context()).Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

// fatalLogger returns the context logger, falling back to a stderr console
// logger when the command failed before logging was set up (flag typos,
// unknown subcommands). Without the fallback those errors exit silently
// because the context carries only zerolog's disabled logger.
func fatalLogger(ctx context.Context) *zerolog.Logger {
	if logger := zerolog.Ctx(ctx); logger.GetLevel() != zerolog.Disabled {
		return logger
	}
	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger()
	return &logger
}
