// Package assets discovers LUT files on disk and groups them into
// display genres. It is the asset-discovery collaborator: the engine
// only ever sees the paths this package hands out.
package assets

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Asset is one discoverable LUT file.
type Asset struct {
	Path  string
	Name  string
	Genre string
}

// genreRules map filename patterns to display genres. Order matters:
// the first matching group wins. Patterns follow the naming of the
// stock filter library the app ships with.
var genreRules = []struct {
	genre    string
	patterns []*regexp.Regexp
}{
	{"Fujifilm", compileAll(`fuji`, `provia`, `velvia`, `astia`, `acros`, `eterna`, `chrome`)},
	{"Kodak Film", compileAll(`kodak`, `800t`, `delta400`)},
	{"Ricoh GR", compileAll(`^gr\.`, `gr\.bw`, `gr\.hi`, `gr\.nega`, `gr\.posi`)},
	{"Cinematic", compileAll(`moneyball`, `inception`, `cyberpunk`, `interstellar`, `neon`, `city`)},
	{"Black & White", compileAll(`b-w`, `blackandwhite`, `mono`, `grayscale`)},
	{"Portrait", compileAll(`portrait`, `pp1`, `pp2`, `pp3`)},
	{"Landscape", compileAll(`landscape`, `mountains`, `island`, `lake`, `beach`, `desert`, `forest`)},
	{"Food", compileAll(`food`, `gourmet`)},
	{"Night", compileAll(`night`, `moonlight`)},
	{"Warm Tones", compileAll(`warm`, `cola`, `candy`, `sweet`, `gold`)},
	{"Cool Tones", compileAll(`cold`, `cool`, `azure`, `blue`)},
	{"Vintage", compileAll(`old`, `vintage`, `retro`, `ccd`)},
	{"HDR & Video", compileAll(`hdr`, `log_video`, `bt2020`, `bt709`, `p3_`)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		out[i] = regexp.MustCompile(expr)
	}
	return out
}

// Classify maps a LUT filename to its display genre, falling back to
// "Other".
func Classify(filename string) string {
	base := strings.ToLower(filepath.Base(filename))
	for _, rule := range genreRules {
		for _, re := range rule.patterns {
			if re.MatchString(base) {
				return rule.genre
			}
		}
	}
	return "Other"
}

// Scan walks dir for .cube files and returns them sorted by display
// name. A missing or unreadable directory is an error; an empty one
// is not.
func Scan(dir string) ([]Asset, error) {
	var found []Asset
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".cube") {
			return nil
		}
		found = append(found, Asset{
			Path:  path,
			Name:  displayName(path),
			Genre: Classify(path),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("assets: scanning %s: %w", dir, err)
	}

	sort.Slice(found, func(i, j int) bool { return found[i].Name < found[j].Name })
	return found, nil
}

// displayName turns "luts/kodak_800t.cube" into "Kodak 800t".
func displayName(path string) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	words := strings.Fields(base)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
