//go:build js && wasm

package main

import (
	"context"
	"fmt"
	"syscall/js"

	"github.com/lucasjlepore/stepcadence"
	"github.com/lucasjlepore/stepcadence/pipeline"
)

func main() {
	js.Global().Set("summarizeSteps", js.FuncOf(summarizeSteps))
	select {}
}

func summarizeSteps(_ js.Value, args []js.Value) any {
	if len(args) < 2 {
		return failure("expected arguments: fileBytes(Uint8Array), options(object)")
	}
	fileArg := args[0]
	optsArg := args[1]
	if fileArg.IsUndefined() || fileArg.IsNull() || fileArg.Get("length").Int() == 0 {
		return failure("table bytes are required")
	}

	fileBytes := make([]byte, fileArg.Get("length").Int())
	if n := js.CopyBytesToGo(fileBytes, fileArg); n == 0 {
		return failure("failed to read table bytes from JS input")
	}

	policy, err := stepcadence.ParseCellPolicy(getString(optsArg, "invalid_cells", ""))
	if err != nil {
		return failure(err.Error())
	}
	th := stepcadence.DefaultThresholds()
	th.MinAllSteps = getInt(optsArg, "min_all_step_threshold", th.MinAllSteps)
	th.MinWalkingSteps = getInt(optsArg, "min_walking_step_threshold", th.MinWalkingSteps)
	th.MinActiveSteps = getInt(optsArg, "min_active_step_threshold", th.MinActiveSteps)

	result, err := pipeline.RunBytes(context.Background(), pipeline.BytesOptions{
		SourceFileName: getString(optsArg, "source_file_name", "input.xlsx"),
		Data:           fileBytes,
		Sheet:          getString(optsArg, "sheet", ""),
		Region:         getString(optsArg, "region", ""),
		Thresholds:     th,
		CellPolicy:     policy,
		Format:         getString(optsArg, "format", "csv"),
	})
	if err != nil {
		return failure(err.Error())
	}

	zipBytes, err := result.Zip()
	if err != nil {
		return failure(fmt.Sprintf("create zip: %v", err))
	}
	payload := js.Global().Get("Uint8Array").New(len(zipBytes))
	js.CopyBytesToJS(payload, zipBytes)

	return map[string]any{
		"ok":       true,
		"zip":      payload,
		"users":    len(result.Rows),
		"warnings": toJSArray(result.Warnings),
		"files":    toJSArray(result.FileNames()),
	}
}

func failure(msg string) map[string]any {
	return map[string]any{
		"ok":    false,
		"error": msg,
	}
}

// option returns opts[key], or an undefined value when opts is not an object.
func option(opts js.Value, key string) js.Value {
	if opts.Type() != js.TypeObject {
		return js.Undefined()
	}
	return opts.Get(key)
}

func getString(opts js.Value, key, fallback string) string {
	if v := option(opts, key); v.Type() == js.TypeString && v.String() != "" {
		return v.String()
	}
	return fallback
}

func getInt(opts js.Value, key string, fallback int) int {
	if v := option(opts, key); v.Type() == js.TypeNumber {
		return v.Int()
	}
	return fallback
}

// toJSArray converts to []any, the slice type js.ValueOf accepts.
func toJSArray(values []string) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		out = append(out, v)
	}
	return out
}
