package options

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/natefinch/atomic"
	"github.com/tailscale/hujson"

	"github.com/iamNilotpal/cc0/pkg/filesys"
	"github.com/iamNilotpal/cc0/pkg/seginfo"
)

// configBackupPrefix names the rotating copies SaveSnapshot keeps of the
// configuration it is about to overwrite, under a "backups" subdirectory of
// wherever the live snapshot lives.
const configBackupPrefix = "config-backup"

// overlay mirrors the JSON-visible subset of Options. Only non-zero fields
// are applied on top of the current configuration, the same "sparse
// overlay" shape as a typical JSONC config file: an operator writes only
// the handful of values they want to change, leaving everything else to
// the compiled-in defaults.
type overlay struct {
	DataDir       string         `json:"dataDir"`
	StoreOptions  *storeOptions  `json:"storeOptions"`
	CacheOptions  *cacheOptions  `json:"cacheOptions"`
	EngineOptions *engineOptions `json:"engineOptions"`
}

// ApplyFile reads a JSONC (JSON-with-comments) file at path and merges any
// fields it sets into o. Missing files are not an error — a cc0 deployment
// is expected to run entirely off compiled-in defaults and command-line
// flags unless an operator has dropped a config file in place.
func ApplyFile(o *Options, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading config file %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return fmt.Errorf("invalid JSONC in %s: %w", path, err)
	}

	var ov overlay
	if err := json.Unmarshal(standardized, &ov); err != nil {
		return fmt.Errorf("invalid JSON in %s: %w", path, err)
	}

	mergeOverlay(o, &ov)
	return nil
}

func mergeOverlay(o *Options, ov *overlay) {
	if ov.DataDir != "" {
		o.DataDir = ov.DataDir
	}

	if ov.StoreOptions != nil {
		if ov.StoreOptions.Directory != "" {
			o.StoreOptions.Directory = ov.StoreOptions.Directory
		}
		if ov.StoreOptions.SStoreFile != "" {
			o.StoreOptions.SStoreFile = ov.StoreOptions.SStoreFile
		}
		if ov.StoreOptions.TStoreFile != "" {
			o.StoreOptions.TStoreFile = ov.StoreOptions.TStoreFile
		}
		if ov.StoreOptions.ASTStoreFile != "" {
			o.StoreOptions.ASTStoreFile = ov.StoreOptions.ASTStoreFile
		}
		if ov.StoreOptions.SymStoreFile != "" {
			o.StoreOptions.SymStoreFile = ov.StoreOptions.SymStoreFile
		}
		if ov.StoreOptions.TACStoreFile != "" {
			o.StoreOptions.TACStoreFile = ov.StoreOptions.TACStoreFile
		}
	}

	if ov.CacheOptions != nil {
		if ov.CacheOptions.NSlots > 0 {
			o.CacheOptions.NSlots = ov.CacheOptions.NSlots
		}
		if ov.CacheOptions.HashBuckets > 0 {
			o.CacheOptions.HashBuckets = ov.CacheOptions.HashBuckets
		}
	}

	if ov.EngineOptions != nil {
		e, d := o.EngineOptions, ov.EngineOptions
		if d.MaxTemporaries > 0 {
			e.MaxTemporaries = d.MaxTemporaries
		}
		if d.MaxVariables > 0 {
			e.MaxVariables = d.MaxVariables
		}
		if d.MaxCallDepth > 0 {
			e.MaxCallDepth = d.MaxCallDepth
		}
		if d.MaxSteps > 0 {
			e.MaxSteps = d.MaxSteps
		}
		if d.HeapSize > 0 {
			e.HeapSize = d.HeapSize
		}
		// Booleans have no "unset" zero value distinct from false, so
		// tracing/checked-arithmetic overlays always take effect when the
		// EngineOptions block is present at all.
		e.EnableTracing = d.EnableTracing
		e.CheckedArithmetic = d.CheckedArithmetic
	}
}

// SaveSnapshot writes the resolved effective configuration to path as
// indented JSON, using an atomic rename so a reader never observes a
// partially written file. This is the one place in cc0 where a torn write
// would be user-visible — every store file is append-only with
// explicit offsets and recovers its own state on reopen, but a config
// snapshot is read back in one shot by a human or a future process.
//
// If a snapshot already exists at path, it is copied aside into a
// "backups" subdirectory using the same prefix_NNNNN_timestamp naming as
// seginfo's segment files before being replaced, so -dump-config never
// silently destroys the previous configuration.
func SaveSnapshot(o *Options, path string) error {
	data, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling config snapshot: %w", err)
	}

	data = append(data, '\n')

	if exists, err := filesys.Exists(path); err != nil {
		return fmt.Errorf("checking existing config snapshot at %s: %w", path, err)
	} else if exists {
		if err := backupSnapshot(path); err != nil {
			return fmt.Errorf("backing up existing config snapshot at %s: %w", path, err)
		}
	}

	if err := atomic.WriteFile(path, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("writing config snapshot to %s: %w", path, err)
	}

	return nil
}

// backupSnapshot copies the config file currently at path into a sibling
// "backups" directory, naming the copy with the next sequence number after
// whatever backup already has the highest one.
func backupSnapshot(path string) error {
	dir := filepath.Dir(path)
	backupDir := filepath.Join(dir, "backups")

	if err := filesys.CreateDir(backupDir, 0755, true); err != nil {
		return fmt.Errorf("creating backup directory %s: %w", backupDir, err)
	}

	lastID, lastInfo, err := seginfo.GetLastSegmentInfo(dir, "backups", configBackupPrefix)
	if err != nil {
		return fmt.Errorf("discovering last config backup: %w", err)
	}

	// GetLastSegmentInfo already returns the next id to use when no backup
	// exists yet (the bootstrap case); otherwise it returns the id of the
	// most recent backup, which we advance past.
	nextID := lastID
	if lastInfo != nil {
		nextID = lastID + 1
	}

	name := seginfo.GenerateName(nextID, configBackupPrefix)
	return filesys.CopyFile(path, filepath.Join(backupDir, name))
}
