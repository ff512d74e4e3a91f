package scene

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"cornell-empty", "Cornell Empty"},
		{"dragon_gold", "Dragon Gold"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"spheregrid", "Spheregrid"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, titleCase(tc.input))
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
			name: "complete_metadata.yaml",
			content: `# Scene: Cornell Box
# Description: Classic Cornell box with no objects
# Group: Rooms

primitives: []`,
			expected: SceneInfo{
				ID:          "file:complete_metadata",
				Name:        "Cornell Box",
				Description: "Classic Cornell box with no objects",
				Group:       "Rooms",
				Type:        TypeFile,
			},
		},
		{
			name: "partial_metadata.yaml",
			content: `# Scene: Dragon
# Description: Dragon mesh scene
name: dragon`,
			expected: SceneInfo{
				ID:          "file:partial_metadata",
				Name:        "Dragon",
				Description: "Dragon mesh scene",
				Group:       "Scene Files",
				Type:        TypeFile,
			},
		},
		{
			name:    "no_metadata.yaml",
			content: `name: plain`,
			expected: SceneInfo{
				ID:    "file:no_metadata",
				Name:  "No Metadata",
				Group: "Scene Files",
				Type:  TypeFile,
			},
		},
		{
			name: "malformed_comments.yaml",
			content: `#Scene: Missing space
#Group:
# just a comment
name: x
# Description: after the header`,
			expected: SceneInfo{
				ID:    "file:malformed_comments",
				Name:  "Missing space",
				Group: "Scene Files",
				Type:  TypeFile,
			},
		},
	}

	dir := t.TempDir()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(dir, tc.name)
			require.NoError(t, os.WriteFile(path, []byte(tc.content), 0644))

			result, err := ParseSceneMetadata(path)
			require.NoError(t, err)

			tc.expected.FilePath = path
			assert.Equal(t, tc.expected, result)
		})
	}
}

func TestParseSceneMetadata_MissingFile(t *testing.T) {
	_, err := ParseSceneMetadata(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestListFileScenes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte("# Scene: Beta\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yml"), []byte("# Scene: Alpha\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("# Scene: Ignored\n"), 0644))

	scenes, err := ListFileScenes(dir)
	require.NoError(t, err)
	require.Len(t, scenes, 2)
	assert.Equal(t, "Alpha", scenes[0].Name)
	assert.Equal(t, "Beta", scenes[1].Name)

	scenes, err = ListFileScenes(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.NotNil(t, scenes)
	assert.Empty(t, scenes)
}

func TestListAllScenes(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "room.yaml"), []byte("# Group: Rooms\n"), 0644))

	scenes, err := ListAllScenes(dir)
	require.NoError(t, err)
	require.Len(t, scenes, len(Names())+1)

	for i, name := range Names() {
		assert.Equal(t, name, scenes[i].ID)
		assert.Equal(t, TypeBuiltin, scenes[i].Type)
		assert.NotEmpty(t, scenes[i].Description)
	}

	last := scenes[len(scenes)-1]
	assert.Equal(t, TypeFile, last.Type)
	assert.True(t, strings.HasPrefix(last.ID, "file:"))
	assert.Equal(t, "Rooms", last.Group)
	assert.NotEmpty(t, last.FilePath)
}
