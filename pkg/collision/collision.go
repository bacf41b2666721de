// Package collision holds the process-global static collision geometry.
// Init (or InitFromMem) runs once at startup; after it returns the meshes are
// not replaced, and arenas on different goroutines look them up through
// MeshesFor, which takes the store mutex.
package collision

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"

	"github.com/pitchsim/pitchsim/pkg/geom"
	"github.com/pitchsim/pitchsim/pkg/phys"
)

// ErrInitMissing is returned when an arena is created before Init.
var ErrInitMissing = errors.New(
	"collision meshes not initialized: call collision.Init or collision.InitFromMem first")

var ErrBadMeshFile = errors.New("malformed collision mesh file")

// MeshMap maps a game-mode name ("soccar", "hoops", ...) to its triangle soup.
type MeshMap map[string][]phys.Triangle

var store struct {
	mu     deadlock.Mutex
	loaded bool
	meshes MeshMap
}

// Init decodes pre-built triangle soups from meshesPath, one subdirectory per
// mode. Missing directories are fine; modes without meshes get procedural
// hulls. Not re-entrant: the second successful call is a no-op.
func Init(meshesPath string) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.loaded {
		return nil
	}

	meshes := MeshMap{}
	entries, err := os.ReadDir(meshesPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading collision mesh dir: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		mode := entry.Name()
		var tris []phys.Triangle
		files, err := os.ReadDir(filepath.Join(meshesPath, mode))
		if err != nil {
			return fmt.Errorf("reading %s meshes: %w", mode, err)
		}
		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".cms") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(meshesPath, mode, f.Name()))
			if err != nil {
				return err
			}
			decoded, err := decodeSoup(data)
			if err != nil {
				return fmt.Errorf("%s/%s: %w", mode, f.Name(), err)
			}
			tris = append(tris, decoded...)
		}
		if len(tris) > 0 {
			meshes[mode] = tris
		}
	}

	store.meshes = meshes
	store.loaded = true
	log.Info().Int("modes", len(meshes)).Msg("collision meshes loaded")
	return nil
}

// InitFromMem loads cbor-encoded soups directly, for tests and embedders.
func InitFromMem(encoded map[string][]byte, silent bool) error {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.loaded {
		return nil
	}

	meshes := MeshMap{}
	for mode, data := range encoded {
		var raw [][9]float32
		if err := cbor.Unmarshal(data, &raw); err != nil {
			return fmt.Errorf("decoding %s soup: %w", mode, err)
		}
		tris := make([]phys.Triangle, len(raw))
		for i, t := range raw {
			tris[i] = phys.Triangle{
				A: geom.Vec{X: t[0], Y: t[1], Z: t[2]},
				B: geom.Vec{X: t[3], Y: t[4], Z: t[5]},
				C: geom.Vec{X: t[6], Y: t[7], Z: t[8]},
			}
		}
		meshes[mode] = tris
	}

	store.meshes = meshes
	store.loaded = true
	if !silent {
		log.Info().Int("modes", len(meshes)).Msg("collision meshes loaded from memory")
	}
	return nil
}

// InitEmpty marks the store loaded with no meshes; every mode falls back to
// procedural hulls. Intended for tests and the benchmark CLI's default run.
func InitEmpty() {
	store.mu.Lock()
	defer store.mu.Unlock()
	if store.loaded {
		return
	}
	store.meshes = MeshMap{}
	store.loaded = true
}

// IsInitialized reports whether a one-shot init has completed.
func IsInitialized() bool {
	store.mu.Lock()
	defer store.mu.Unlock()
	return store.loaded
}

// MeshesFor returns the loaded soup for a mode, or nil when the mode has no
// meshes and the caller should build procedural geometry.
func MeshesFor(mode string) []phys.Triangle {
	store.mu.Lock()
	defer store.mu.Unlock()
	if !store.loaded {
		return nil
	}
	return store.meshes[mode]
}

const soupMagic = 0x534d4350 // "PCMS"

func decodeSoup(data []byte) ([]phys.Triangle, error) {
	if len(data) < 8 {
		return nil, ErrBadMeshFile
	}
	if binary.LittleEndian.Uint32(data) != soupMagic {
		return nil, fmt.Errorf("%w: bad magic", ErrBadMeshFile)
	}
	count := binary.LittleEndian.Uint32(data[4:])
	need := 8 + int(count)*36
	if len(data) < need {
		return nil, fmt.Errorf("%w: truncated at %d bytes", ErrBadMeshFile, len(data))
	}

	tris := make([]phys.Triangle, count)
	off := 8
	readVec := func() geom.Vec {
		v := geom.Vec{
			X: math.Float32frombits(binary.LittleEndian.Uint32(data[off:])),
			Y: math.Float32frombits(binary.LittleEndian.Uint32(data[off+4:])),
			Z: math.Float32frombits(binary.LittleEndian.Uint32(data[off+8:])),
		}
		off += 12
		return v
	}
	for i := range tris {
		tris[i].A = readVec()
		tris[i].B = readVec()
		tris[i].C = readVec()
	}
	return tris, nil
}

// EncodeSoup writes the .cms container for a triangle soup.
func EncodeSoup(tris []phys.Triangle) []byte {
	out := make([]byte, 8, 8+len(tris)*36)
	binary.LittleEndian.PutUint32(out, soupMagic)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(tris)))
	writeVec := func(v geom.Vec) {
		var buf [12]byte
		binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(v.X))
		binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(v.Y))
		binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(v.Z))
		out = append(out, buf[:]...)
	}
	for _, t := range tris {
		writeVec(t.A)
		writeVec(t.B)
		writeVec(t.C)
	}
	return out
}

// ResetForTesting clears the store so init paths can be exercised more than
// once in a test binary.
func ResetForTesting() {
	store.mu.Lock()
	defer store.mu.Unlock()
	store.loaded = false
	store.meshes = nil
}
