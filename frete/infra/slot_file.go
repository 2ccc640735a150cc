package infra

import (
	"context"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"frete-proxy/frete/domain"

	"go.trai.ch/zerr"
)

const (
	filePerm = 0o644
	dirPerm  = 0o755
)

// FileSlot persiste o último resultado em um arquivo JSON (ex: fretes.json).
//
// A escrita vai para um arquivo temporário no mesmo diretório e depois é
// renomeada por cima do destino; rename é atômico no mesmo filesystem, então
// um leitor concorrente vê o valor antigo ou o novo, nunca um arquivo parcial.
type FileSlot struct {
	path string
}

func NewFileSlot(path string) *FileSlot {
	return &FileSlot{path: path}
}

func (s *FileSlot) Path() string { return s.path }

func (s *FileSlot) Load(context.Context) (*domain.CachedResult, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, zerr.With(zerr.Wrap(err, "falha ao ler slot em arquivo"), "arquivo", s.path)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var res domain.CachedResult
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "slot em arquivo corrompido"), "arquivo", s.path)
	}
	return &res, nil
}

func (s *FileSlot) Store(_ context.Context, res domain.CachedResult) error {
	data, err := json.Marshal(res)
	if err != nil {
		return zerr.Wrap(err, "falha ao serializar resultado")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return zerr.With(zerr.Wrap(err, "falha ao criar diretório do cache"), "dir", dir)
	}

	tmp, err := os.CreateTemp(dir, s.tempPattern())
	if err != nil {
		return zerr.With(zerr.Wrap(err, "falha ao criar arquivo temporário"), "dir", dir)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return zerr.With(zerr.Wrap(err, "falha ao gravar arquivo temporário"), "arquivo", tmpName)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return zerr.With(zerr.Wrap(err, "falha ao sincronizar arquivo temporário"), "arquivo", tmpName)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return zerr.With(zerr.Wrap(err, "falha ao fechar arquivo temporário"), "arquivo", tmpName)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		cleanup()
		return zerr.With(zerr.Wrap(err, "falha ao ajustar permissão"), "arquivo", tmpName)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return zerr.With(zerr.Wrap(err, "falha ao substituir slot em arquivo"), "arquivo", s.path)
	}
	return nil
}

// Clear remove o arquivo e qualquer temporário que tenha sobrado de uma
// escrita interrompida.
func (s *FileSlot) Clear(context.Context) error {
	var errs error
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		errs = errors.Join(errs, zerr.With(zerr.Wrap(err, "falha ao remover slot em arquivo"), "arquivo", s.path))
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(s.path), s.tempPattern()))
	for _, name := range leftovers {
		if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = errors.Join(errs, zerr.With(zerr.Wrap(err, "falha ao remover temporário"), "arquivo", name))
		}
	}
	return errs
}

func (s *FileSlot) tempPattern() string {
	return "." + filepath.Base(s.path) + ".*.tmp"
}
