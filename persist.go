package undokv

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const recoveryFileName = "undo_stack.dat"

const (
	fileMagic      = uint32(0x30510ABC)
	minFileVersion = uint32(1)
	maxFileVersion = uint32(1)
)

// load replays the recovery file into a freshly rebuilt session chain and
// deletes the file. No-op when persistence is disabled or the file does
// not exist. Decode failures may leave the stack partially populated;
// callers must treat the stack as unrecoverable then.
func (u *UndoStack) load() error {
	if u.dir == "" {
		return nil
	}

	path := filepath.Join(u.dir, recoveryFileName)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		return fmt.Errorf("undokv: %s: %w", path, err)
	}

	if err := u.replay(data); err != nil {
		return fmt.Errorf("undokv: %s: %w", path, err)
	}

	// Delete only after a fully successful load, and never load twice.
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("undokv: %s: %w", path, err)
	}

	u.logger.Info("undokv: recovered pending sessions",
		"file", path,
		"sessions", len(u.sessions),
		"revision", u.revision,
	)
	return nil
}

func (u *UndoStack) replay(data []byte) error {
	d := makeByteDecoder(data)

	magic, err := d.Uint32()
	if err != nil {
		return err
	}
	if magic != fileMagic {
		return fmt.Errorf("unexpected magic number %08X, expected %08X: %w", magic, fileMagic, ErrIncompatible)
	}

	version, err := d.Uint32()
	if err != nil {
		return err
	}
	if version < minFileVersion || version > maxFileVersion {
		return fmt.Errorf("file version is %d while code supports versions [%d,%d]: %w",
			version, minFileVersion, maxFileVersion, ErrUnsupportedVersion)
	}

	revision, err := d.Uint64()
	if err != nil {
		return err
	}
	u.SetRevision(int64(revision))

	sessionCount, err := d.Uvarinti()
	if err != nil {
		return err
	}

	for i := 0; i < sessionCount; i++ {
		var session *Session
		if n := len(u.sessions); n == 0 {
			session = NewSession(u.head)
		} else {
			session = NewSession(u.sessions[n-1])
		}

		updatedCount, err := d.Uvarinti()
		if err != nil {
			return err
		}
		for j := 0; j < updatedCount; j++ {
			key, err := d.VarBytes()
			if err != nil {
				return err
			}
			value, err := d.VarBytes()
			if err != nil {
				return err
			}
			if err := session.Put(key, value); err != nil {
				return err
			}
		}

		deletedCount, err := d.Uvarinti()
		if err != nil {
			return err
		}
		for j := 0; j < deletedCount; j++ {
			key, err := d.VarBytes()
			if err != nil {
				return err
			}
			if err := session.Delete(key); err != nil {
				return err
			}
		}

		u.sessions = append(u.sessions, session)
	}

	return nil
}

// save serializes all pending sessions, bottom to top, into the recovery
// file and empties the stack. The revision counter is left untouched; it
// is part of the file header and restored on the next load.
func (u *UndoStack) save() error {
	path := filepath.Join(u.dir, recoveryFileName)
	if err := os.MkdirAll(u.dir, 0o777); err != nil {
		return fmt.Errorf("undokv: %s: %w", path, err)
	}

	buf := make([]byte, 0, 1024)
	buf = appendUint32(buf, fileMagic)
	buf = appendUint32(buf, maxFileVersion)
	buf = appendUint64(buf, uint64(u.revision))
	buf = appendUvarinti(buf, len(u.sessions))

	drained := 0
	for len(u.sessions) > 0 {
		session := u.sessions[0]

		updated := session.UpdatedKeys()
		buf = appendUvarinti(buf, len(updated))
		for _, key := range updated {
			value, ok, err := session.Get(key)
			if err != nil {
				return fmt.Errorf("undokv: %s: %w", path, err)
			}
			if !ok {
				return fmt.Errorf("undokv: %s: updated key %x has no value", path, key)
			}
			buf = appendVarbytes(buf, key)
			buf = appendVarbytes(buf, value)
		}

		deleted := session.DeletedKeys()
		buf = appendUvarinti(buf, len(deleted))
		for _, key := range deleted {
			buf = appendVarbytes(buf, key)
		}

		session.Detach()
		u.sessions[0] = nil // ensure it gets collected
		u.sessions = u.sessions[1:]
		drained++
	}
	u.sessions = nil

	if err := writeFileSync(path, buf); err != nil {
		return fmt.Errorf("undokv: %s: %w", path, err)
	}

	u.logger.Info("undokv: saved pending sessions",
		"file", path,
		"sessions", drained,
		"revision", u.revision,
	)
	return nil
}

func writeFileSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return err
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
