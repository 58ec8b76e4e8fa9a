package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/recalld/recalld/internal/storage"
)

// Syncer reconciles registered card sources against the stored catalog:
// new cards are inserted, vanished cards are pruned.
type Syncer struct {
	db       *storage.DB
	log      zerolog.Logger
	reposDir string // where git sources are checked out
}

// NewSyncer creates a Syncer. Git sources are mirrored under reposDir.
func NewSyncer(db *storage.DB, log zerolog.Logger, reposDir string) *Syncer {
	return &Syncer{db: db, log: log, reposDir: reposDir}
}

// DetectSourceType classifies a source path as "git" or "local".
func DetectSourceType(path string) string {
	if strings.HasSuffix(path, ".git") || strings.HasPrefix(path, "git@") ||
		strings.HasPrefix(path, "https://") || strings.HasPrefix(path, "http://") {
		return "git"
	}
	return "local"
}

// AddSource registers a new card source if it isn't registered already,
// returning its id.
func (s *Syncer) AddSource(ctx context.Context, path string) (int64, error) {
	existing, err := s.db.FindSourceByPath(ctx, path)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}
	return s.db.InsertSource(ctx, path, DetectSourceType(path))
}

// SyncAll reconciles every registered source. A failing source is logged
// and skipped; the rest still sync.
func (s *Syncer) SyncAll(ctx context.Context) error {
	sources, err := s.db.GetAllSources(ctx)
	if err != nil {
		return fmt.Errorf("failed to get sources: %w", err)
	}
	if len(sources) == 0 {
		s.log.Info().Msg("no card sources configured")
		return nil
	}

	for _, src := range sources {
		if err := s.syncSource(ctx, src); err != nil {
			s.log.Error().Err(err).Str("path", src.Path).Msg("source sync failed")
		}
	}
	return nil
}

func (s *Syncer) syncSource(ctx context.Context, src storage.Source) error {
	root := src.Path
	if src.Type == "git" {
		localPath, err := gitURLToLocalPath(s.reposDir, src.Path)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(s.reposDir, 0o755); err != nil {
			return err
		}
		if err := syncRepo(src.Path, localPath, s.log); err != nil {
			return err
		}
		root = localPath
	}
	return s.reconcileLocal(ctx, src, root)
}

// reconcileLocal walks the source directory, upserting every parsed card
// and pruning cards the source no longer contains.
func (s *Syncer) reconcileLocal(ctx context.Context, src storage.Source, root string) error {
	found := map[string]bool{}
	var parsed, inserted int

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		cards, parseErr := ParseFile(path)
		if parseErr != nil {
			s.log.Warn().Err(parseErr).Str("file", path).Msg("card file skipped")
			return nil
		}
		for _, card := range cards {
			card.ItemID = ItemID(card)
			parsed++
			if found[card.ItemID] {
				continue
			}
			found[card.ItemID] = true
			if err := s.db.UpsertCard(ctx, card, src.ID); err != nil {
				return err
			}
			inserted++
		}
		return nil
	})
	if walkErr != nil {
		return fmt.Errorf("failed to walk %s: %w", root, walkErr)
	}

	stored, err := s.db.CardsBySource(ctx, src.ID)
	if err != nil {
		return err
	}
	var pruned int
	for _, card := range stored {
		if found[card.ItemID] {
			continue
		}
		if err := s.db.DeleteCard(ctx, card.ItemID); err != nil {
			s.log.Warn().Err(err).Str("item", card.ItemID).Msg("failed to prune orphaned card")
			continue
		}
		pruned++
	}

	if err := s.db.TouchSource(ctx, src.ID, time.Now()); err != nil {
		s.log.Warn().Err(err).Int64("source", src.ID).Msg("failed to update last scanned")
	}

	s.log.Info().
		Str("path", src.Path).
		Int("parsed", parsed).
		Int("pruned", pruned).
		Msg("source reconciled")
	return nil
}

func gitURLToLocalPath(baseDir, repoURL string) (string, error) {
	parsedURL, err := url.Parse(repoURL)
	if err != nil || (parsedURL.Scheme != "https" && parsedURL.Scheme != "http") {
		// scp-like syntax: git@host:user/repo.git
		if strings.Contains(repoURL, "@") {
			parts := strings.Split(repoURL, ":")
			if len(parts) == 2 {
				hostAndUser := strings.Split(parts[0], "@")
				if len(hostAndUser) == 2 {
					host := hostAndUser[1]
					repoPath := strings.TrimSuffix(parts[1], ".git")
					return filepath.Join(baseDir, host, repoPath), nil
				}
			}
		}
		return "", fmt.Errorf("could not parse git URL: %s", repoURL)
	}

	sanitizedPath := strings.TrimSuffix(parsedURL.Path, ".git")
	return filepath.Join(baseDir, parsedURL.Host, sanitizedPath), nil
}
