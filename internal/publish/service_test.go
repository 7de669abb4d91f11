package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/dosym/pagebox/internal/site"
	"github.com/google/uuid"
)

func TestResolveServesRawAsset(t *testing.T) {
	env := newTestEnv()
	env.addObject("css/main.css", []byte("body{margin:0}"))

	asset, err := env.service.Resolve(context.Background(), "alice", "demo", []string{"css", "main.css"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if asset.ContentType != "text/css" {
		t.Fatalf("content type = %q, want text/css", asset.ContentType)
	}
	if string(asset.Content) != "body{margin:0}" {
		t.Fatalf("raw asset must pass through unchanged: %s", asset.Content)
	}
}

func TestResolveDefaultsToIndexHTML(t *testing.T) {
	env := newTestEnv()
	env.addObject("index.html", []byte("<html><head></head><body>hi</body></html>"))

	for _, subPath := range [][]string{nil, {}, {""}} {
		asset, err := env.service.Resolve(context.Background(), "alice", "demo", subPath)
		if err != nil {
			t.Fatalf("Resolve(%v) returned error: %v", subPath, err)
		}
		if asset.ContentType != "text/html" {
			t.Fatalf("content type = %q", asset.ContentType)
		}
	}
}

func TestResolveInjectsBaseHrefIntoHTML(t *testing.T) {
	env := newTestEnv()
	env.addObject("index.html", []byte("<html><head><title>t</title></head></html>"))

	asset, err := env.service.Resolve(context.Background(), "alice", "demo", nil)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !strings.Contains(string(asset.Content), `<base href="/s/alice/demo/">`) {
		t.Fatalf("expected base tag for the public mount, got: %s", asset.Content)
	}
}

func TestResolveStripsTraversalFromSubPath(t *testing.T) {
	env := newTestEnv()
	env.addObject("secret.txt", []byte("inside"))

	asset, err := env.service.Resolve(context.Background(), "alice", "demo", []string{"..", "..", "secret.txt"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	// The traversal segments are dropped; the request resolves inside the
	// site prefix, never outside it.
	if string(asset.Content) != "inside" {
		t.Fatalf("unexpected content: %s", asset.Content)
	}
	if env.objects.lastKey != fmt.Sprintf("%s/%s/secret.txt", env.ownerID, env.siteID) {
		t.Fatalf("fetched key escaped the site prefix: %s", env.objects.lastKey)
	}
}

func TestResolveNotFoundAtEveryStage(t *testing.T) {
	env := newTestEnv()
	env.addObject("index.html", []byte("<html></html>"))

	cases := []struct {
		name    string
		handle  string
		slug    string
		subPath []string
	}{
		{"unknown owner", "nobody", "demo", nil},
		{"unknown site", "alice", "other", nil},
		{"missing object", "alice", "demo", []string{"missing.png"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.service.Resolve(context.Background(), tc.handle, tc.slug, tc.subPath)
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected opaque ErrNotFound, got %v", err)
			}
		})
	}
}

// --- fakes ---

type testEnv struct {
	ownerID uuid.UUID
	siteID  uuid.UUID
	objects *fakeObjects
	service *Service
}

func newTestEnv() *testEnv {
	env := &testEnv{
		ownerID: uuid.New(),
		siteID:  uuid.New(),
		objects: &fakeObjects{contents: map[string][]byte{}},
	}
	owners := &fakeOwners{handles: map[string]uuid.UUID{"alice": env.ownerID}}
	sites := &fakeSites{records: map[string]site.Site{
		env.ownerID.String() + "/demo": {ID: env.siteID, OwnerID: env.ownerID, Slug: "demo"},
	}}
	env.service = NewService(owners, sites, env.objects)
	return env
}

func (e *testEnv) addObject(relativePath string, content []byte) {
	e.objects.contents[fmt.Sprintf("%s/%s/%s", e.ownerID, e.siteID, relativePath)] = content
}

type fakeOwners struct {
	handles map[string]uuid.UUID
}

func (f *fakeOwners) FindOwnerByHandle(ctx context.Context, handle string) (uuid.UUID, error) {
	id, ok := f.handles[handle]
	if !ok {
		return uuid.Nil, errors.New("user not found")
	}
	return id, nil
}

type fakeSites struct {
	records map[string]site.Site
}

func (f *fakeSites) GetBySlug(ctx context.Context, ownerID uuid.UUID, slug string) (site.Site, error) {
	s, ok := f.records[ownerID.String()+"/"+slug]
	if !ok {
		return site.Site{}, site.ErrSiteNotFound
	}
	return s, nil
}

type fakeObjects struct {
	contents map[string][]byte
	lastKey  string
}

func (f *fakeObjects) Get(ctx context.Context, key string) ([]byte, error) {
	f.lastKey = key
	content, ok := f.contents[key]
	if !ok {
		return nil, site.ErrObjectNotFound
	}
	return content, nil
}
