package schema

import (
	"fmt"

	"github.com/mesh-intelligence/showstore/pkg/types"
)

// SearchTokenizer folds diacritics so "Pokemon" finds "Pokémon".
const SearchTokenizer = "unicode61 remove_diacritics 2"

// Search index trigger names.
const (
	searchInsertTrigger = "episode_search_ai"
	searchDeleteTrigger = "episode_search_ad"
	searchUpdateTrigger = "episode_search_au"
)

// SearchCreateStatements returns the DDL for the episode search index and
// the triggers that keep it in step with the episodes table. An empty
// tokenizer uses the engine default.
func SearchCreateStatements(tokenizer string) []string {
	tok := ""
	if tokenizer != "" {
		tok = fmt.Sprintf(", tokenize='%s'", tokenizer)
	}
	fts := types.TableEpisodeSearch
	ep := types.TableEpisodes
	title, overview := types.EpisodeTitle, types.EpisodeOverview
	return []string{
		fmt.Sprintf(`CREATE VIRTUAL TABLE IF NOT EXISTS %s USING fts5(%s, %s, content='%s', content_rowid='%s'%s)`,
			fts, title, overview, ep, types.EpisodeID, tok),
		fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s AFTER INSERT ON %s BEGIN
    INSERT INTO %s(rowid, %s, %s) VALUES (new._id, new.%s, new.%s);
END`, searchInsertTrigger, ep, fts, title, overview, title, overview),
		fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s AFTER DELETE ON %s BEGIN
    INSERT INTO %s(%s, rowid, %s, %s) VALUES ('delete', old._id, old.%s, old.%s);
END`, searchDeleteTrigger, ep, fts, fts, title, overview, title, overview),
		fmt.Sprintf(`CREATE TRIGGER IF NOT EXISTS %s AFTER UPDATE OF %s, %s ON %s BEGIN
    INSERT INTO %s(%s, rowid, %s, %s) VALUES ('delete', old._id, old.%s, old.%s);
    INSERT INTO %s(rowid, %s, %s) VALUES (new._id, new.%s, new.%s);
END`, searchUpdateTrigger, title, overview, ep,
			fts, fts, title, overview, title, overview,
			fts, title, overview, title, overview),
	}
}

// SearchDropStatements removes the search index and its triggers.
func SearchDropStatements() []string {
	return []string{
		"DROP TRIGGER IF EXISTS " + searchInsertTrigger,
		"DROP TRIGGER IF EXISTS " + searchDeleteTrigger,
		"DROP TRIGGER IF EXISTS " + searchUpdateTrigger,
		"DROP TABLE IF EXISTS " + types.TableEpisodeSearch,
	}
}

// SearchRebuildStatement repopulates the index from the episodes table.
func SearchRebuildStatement() string {
	return fmt.Sprintf("INSERT INTO %[1]s(%[1]s) VALUES ('rebuild')", types.TableEpisodeSearch)
}

// SearchOptimizeStatement merges the index b-trees.
func SearchOptimizeStatement() string {
	return fmt.Sprintf("INSERT INTO %[1]s(%[1]s) VALUES ('optimize')", types.TableEpisodeSearch)
}
