package errors

import (
	"bytes"
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		code    string
		wantMsg string
		wantCat Category
	}{
		{name: "config", code: "F101", wantMsg: "Invalid config syntax", wantCat: CategoryConfig},
		{name: "runtime", code: "F201", wantMsg: "Archive upload failed", wantCat: CategoryRuntime},
		{name: "cli", code: "F300", wantMsg: "Config file already exists", wantCat: CategoryCLI},
		{name: "unknown", code: "F999", wantMsg: "Unknown error", wantCat: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code)
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Category != tt.wantCat {
				t.Errorf("Category = %q, want %q", err.Category, tt.wantCat)
			}
			if err.Code != tt.code {
				t.Errorf("Code = %q, want %q", err.Code, tt.code)
			}
		})
	}
}

func TestFaultError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *FaultError
		want string
	}{
		{"coded", New("F105"), "F105: Conflicting host settings"},
		{"uncoded", Newf(CategoryCLI, "bad flag %q", "--x"), `bad flag "--x"`},
		{"wrapped", New("F201").Wrap(stderrors.New("denied")), "F201: Archive upload failed: denied"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUnwrapAndFromError(t *testing.T) {
	cause := os.ErrNotExist
	err := FromError(cause, "F100")
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Error("errors.Is should see the wrapped cause")
	}
	if FromError(err, "F101") != err {
		t.Error("FromError should return a FaultError as-is")
	}
	if FromError(nil, "F100") != nil {
		t.Error("FromError(nil) should be nil")
	}
}

func TestWithLocationReadsContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "faultline.json")
	content := "{\n  \"production\": false,\n  \"devtools\": {\n    \"addr\": \"nohost\",\n  }\n}\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	err := New("F101").WithLocation(path, 4, 20)
	if err.Location.String() != path+":4:20" {
		t.Errorf("Location = %q", err.Location.String())
	}
	if len(err.Context) == 0 || !strings.Contains(strings.Join(err.Context, "\n"), `"addr"`) {
		t.Errorf("Context = %v", err.Context)
	}
}

func TestLocation_String(t *testing.T) {
	var nilLoc *Location
	if nilLoc.String() != "" {
		t.Error("nil location should render empty")
	}
	if got := (&Location{File: "f.json", Line: 3}).String(); got != "f.json:3" {
		t.Errorf("String() = %q", got)
	}
}

func TestFormat(t *testing.T) {
	DisableColors()
	defer EnableColors()

	path := filepath.Join(t.TempDir(), "faultline.json")
	if err := os.WriteFile(path, []byte("{\n  \"production\": tru\n}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := New("F101").
		WithLocation(path, 2, 17).
		WithSuggestion("Use true or false").
		Format()

	for _, want := range []string{
		"ERROR F101: Invalid config syntax",
		path + ":2:17",
		"→    2 │   \"production\": tru",
		"^",
		"Hint: Use true or false",
		"Learn more: " + docBase + "F101",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Format() missing %q in:\n%s", want, out)
		}
	}
}

func TestFormatCompact(t *testing.T) {
	err := New("F102")
	err.Location = &Location{File: "faultline.json", Line: 4, Column: 13}
	want := "faultline.json:4:13: F102: Invalid devtools address"
	if got := err.FormatCompact(); got != want {
		t.Errorf("FormatCompact() = %q, want %q", got, want)
	}
}

func TestFormatJSON(t *testing.T) {
	err := New("F201").Wrap(stderrors.New("timeout"))
	err.Location = &Location{File: "faultline.json", Line: 1}

	var got map[string]any
	if e := json.Unmarshal([]byte(err.FormatJSON()), &got); e != nil {
		t.Fatalf("FormatJSON is not valid JSON: %v", e)
	}
	if got["code"] != "F201" || got["category"] != "runtime" || got["cause"] != "timeout" {
		t.Errorf("FormatJSON() = %v", got)
	}
	loc, _ := got["location"].(map[string]any)
	if loc["file"] != "faultline.json" {
		t.Errorf("location = %v", got["location"])
	}
}

func TestFprint(t *testing.T) {
	DisableColors()
	defer EnableColors()

	var buf bytes.Buffer
	Fprint(&buf, New("F200").Wrap(stderrors.New("address in use")))
	if !strings.Contains(buf.String(), "Cause: address in use") {
		t.Errorf("Fprint() = %q", buf.String())
	}

	buf.Reset()
	Fprint(&buf, stderrors.New("plain"))
	if !strings.Contains(buf.String(), "ERROR: plain") {
		t.Errorf("Fprint() = %q", buf.String())
	}
}

func TestRegistry(t *testing.T) {
	codes := Codes()
	if len(codes) == 0 {
		t.Fatal("Codes() is empty")
	}
	for i, code := range codes {
		if i > 0 && codes[i-1] >= code {
			t.Errorf("Codes() not sorted at %d: %v", i, codes)
		}
		tpl, ok := Lookup(code)
		if !ok || tpl.Message == "" || tpl.DocURL != docBase+code {
			t.Errorf("template %s = %+v", code, tpl)
		}
		wantCat := map[byte]Category{'1': CategoryConfig, '2': CategoryRuntime, '3': CategoryCLI}[code[1]]
		if tpl.Category != wantCat {
			t.Errorf("%s category = %q, want %q", code, tpl.Category, wantCat)
		}
	}
	if _, ok := Lookup("F999"); ok {
		t.Error("F999 should not exist")
	}
}

func TestWrapText(t *testing.T) {
	if got := wrapText("short text", 100); len(got) != 1 {
		t.Errorf("wrapText short: %v", got)
	}
	if got := wrapText("this is a longer text that should be wrapped", 20); len(got) != 3 {
		t.Errorf("wrapText long: %v", got)
	}
	if got := wrapText("", 10); len(got) != 0 {
		t.Errorf("wrapText empty: %v", got)
	}
}

func TestColorFunctions(t *testing.T) {
	EnableColors()
	if !strings.Contains(red("x"), "\033[31m") {
		t.Error("red should contain ANSI code when colors enabled")
	}
	DisableColors()
	if strings.Contains(red("x"), "\033[") {
		t.Error("red should not contain ANSI code when colors disabled")
	}
	EnableColors()
}
