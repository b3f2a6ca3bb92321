package scene

import (
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"glass-spheres", "Glass Spheres"},
		{"dragon_gold", "Dragon Gold"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata(t *testing.T) {
	testCases := []struct {
		name     string
		content  string
		expected SceneInfo
	}{
		{
			name: "complete_metadata.json",
			content: `{"name": "Three Spheres", "variant": "Gold", "description": "Classic trio",
				"group": "Classics", "spheres": []}`,
			expected: SceneInfo{
				ID:          "json:complete_metadata",
				Name:        "Three Spheres",
				DisplayName: "Three Spheres - Gold",
				Description: "Classic trio",
				Group:       "Classics",
				Type:        "json",
				Variant:     "Gold",
			},
		},
		{
			name:    "no_metadata.json",
			content: `{"spheres": []}`,
			expected: SceneInfo{
				ID:          "json:no_metadata",
				Name:        "No Metadata",
				DisplayName: "No Metadata",
				Group:       "Scene Files",
				Type:        "json",
			},
		},
	}

	dir := t.TempDir()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("Failed to write scene file: %v", err)
			}

			result, err := ParseSceneMetadata(path)
			if err != nil {
				t.Fatalf("ParseSceneMetadata() error: %v", err)
			}

			tc.expected.FilePath = path
			if result != tc.expected {
				t.Errorf("ParseSceneMetadata() = %+v, want %+v", result, tc.expected)
			}
		})
	}
}

func TestParseSceneMetadata_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("Failed to write scene file: %v", err)
	}

	result, err := ParseSceneMetadata(path)
	if err == nil {
		t.Error("Expected decode error for malformed file")
	}
	if result.ID != "json:broken" {
		t.Errorf("Expected fallback ID json:broken, got %q", result.ID)
	}
}

func TestListJSONScenes_MissingDirectory(t *testing.T) {
	scenes, err := ListJSONScenes(filepath.Join(t.TempDir(), "does-not-exist"))
	if err != nil {
		t.Errorf("ListJSONScenes() error: %v", err)
	}
	if scenes == nil || len(scenes) != 0 {
		t.Errorf("Expected empty non-nil slice, got %v", scenes)
	}
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"a.json":      `{"name": "Zeta", "group": "Extras"}`,
		"b.json":      `{"name": "Alpha", "group": "Extras"}`,
		"bad.json":    `{oops`,
		"ignored.txt": `not a scene`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatalf("Failed to write %s: %v", name, err)
		}
	}

	response, err := ListAllScenes(dir)
	if err != nil {
		t.Fatalf("ListAllScenes() error: %v", err)
	}
	if len(response.Groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(response.Groups))
	}

	builtIn := response.Groups[0]
	if builtIn.Name != "Built-in Scenes" {
		t.Errorf("Expected built-in group first, got %q", builtIn.Name)
	}
	expectedIDs := map[string]bool{"default": true, "spheregrid": true, "glass": true}
	if len(builtIn.Scenes) != len(expectedIDs) {
		t.Errorf("Built-in scenes count = %d, want %d", len(builtIn.Scenes), len(expectedIDs))
	}
	for _, s := range builtIn.Scenes {
		if !expectedIDs[s.ID] {
			t.Errorf("Unexpected built-in scene %q", s.ID)
		}
		if s.Type != "builtin" {
			t.Errorf("Scene %q has type %q, want builtin", s.ID, s.Type)
		}
	}

	extras := response.Groups[1]
	if extras.Name != "Extras" || len(extras.Scenes) != 2 {
		t.Fatalf("Expected Extras group with 2 scenes, got %+v", extras)
	}
	if extras.Scenes[0].DisplayName != "Alpha" || extras.Scenes[1].DisplayName != "Zeta" {
		t.Errorf("Expected scenes sorted by display name, got %q, %q",
			extras.Scenes[0].DisplayName, extras.Scenes[1].DisplayName)
	}
}
