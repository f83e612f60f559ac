package dart

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CorpCodeResolver maps entity names to DART corp codes. The mapping comes
// from the corpCode.xml file DART distributes as a zip; it is downloaded
// once into the cache dir and reused until forceDownload asks for a fresh
// copy.
type CorpCodeResolver struct {
	apiKey        string
	cacheDir      string
	forceDownload bool
	httpClient    *http.Client

	mapping map[string]string // corp_name -> corp_code, loaded lazily
}

func NewCorpCodeResolver(apiKey, cacheDir string, forceDownload bool) *CorpCodeResolver {
	if cacheDir == "" {
		cacheDir = filepath.Join(".cache", "dart", "corp_code")
	}
	return &CorpCodeResolver{
		apiKey:        apiKey,
		cacheDir:      cacheDir,
		forceDownload: forceDownload,
		httpClient:    &http.Client{Timeout: 60 * time.Second},
	}
}

// Resolve returns the corp code for an entity name, or "" when unknown.
func (r *CorpCodeResolver) Resolve(name string) (string, error) {
	if err := r.ensureMapping(); err != nil {
		return "", err
	}
	return r.mapping[strings.TrimSpace(name)], nil
}

// ResolveAll returns a code per name, parallel to the input; unknown names
// map to "".
func (r *CorpCodeResolver) ResolveAll(names []string) ([]string, error) {
	if err := r.ensureMapping(); err != nil {
		return nil, err
	}
	codes := make([]string, len(names))
	for i, name := range names {
		codes[i] = r.mapping[strings.TrimSpace(name)]
	}
	return codes, nil
}

func (r *CorpCodeResolver) ensureMapping() error {
	if r.mapping != nil {
		return nil
	}

	xmlPath := filepath.Join(r.cacheDir, "CORPCODE.xml")
	if r.forceDownload || !fileExists(xmlPath) {
		if err := r.downloadAndExtract(xmlPath); err != nil {
			return err
		}
		r.forceDownload = false
	}

	data, err := os.ReadFile(xmlPath)
	if err != nil {
		return fmt.Errorf("failed to read corp code file: %w", err)
	}
	mapping, err := parseCorpCodeXML(data)
	if err != nil {
		return err
	}
	r.mapping = mapping
	return nil
}

func (r *CorpCodeResolver) downloadAndExtract(xmlPath string) error {
	if r.apiKey == "" {
		return fmt.Errorf("DART_API_KEY is required to download the corp code file")
	}
	if err := os.MkdirAll(r.cacheDir, 0755); err != nil {
		return fmt.Errorf("failed to create corp code dir: %w", err)
	}

	url := fmt.Sprintf("%s?crtfc_key=%s", CorpCodeURL, r.apiKey)
	resp, err := r.httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("corp code download failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("corp code download returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read corp code zip: %w", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return fmt.Errorf("corp code zip is unreadable: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "CORPCODE.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("failed to open CORPCODE.xml in zip: %w", err)
		}
		defer rc.Close()
		out, err := os.Create(xmlPath)
		if err != nil {
			return fmt.Errorf("failed to create corp code file: %w", err)
		}
		defer out.Close()
		if _, err := io.Copy(out, rc); err != nil {
			return fmt.Errorf("failed to extract CORPCODE.xml: %w", err)
		}
		return nil
	}
	return fmt.Errorf("CORPCODE.xml not found in downloaded zip")
}

// corpCodeDoc mirrors the CORPCODE.xml structure:
// <result><list><corp_code>..</corp_code><corp_name>..</corp_name></list>...</result>
type corpCodeDoc struct {
	List []struct {
		CorpCode string `xml:"corp_code"`
		CorpName string `xml:"corp_name"`
	} `xml:"list"`
}

func parseCorpCodeXML(data []byte) (map[string]string, error) {
	var doc corpCodeDoc
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse CORPCODE.xml: %w", err)
	}
	mapping := make(map[string]string, len(doc.List))
	for _, entry := range doc.List {
		name := strings.TrimSpace(entry.CorpName)
		code := strings.TrimSpace(entry.CorpCode)
		if name != "" && code != "" {
			mapping[name] = code
		}
	}
	return mapping, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
