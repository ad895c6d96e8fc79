// migrate_vademecum importa el catálogo de medicamentos a la tabla vademecum.
// Solo inserta si la tabla está vacía, así que puede correrse en cada despliegue.
//
// Uso: go run ./cmd/migrate_vademecum [ruta/vademecum.xlsx | ruta/vademecum.csv]
// Por defecto busca vademecum.xlsx en el directorio actual. Los CSV se leen como ISO-8859-1.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	appinv "github.com/jhoicas/farmanaccio-api/internal/application/inventory"
	"github.com/jhoicas/farmanaccio-api/internal/domain/entity"
	"github.com/jhoicas/farmanaccio-api/internal/infrastructure/postgres"
	"github.com/jhoicas/farmanaccio-api/internal/infrastructure/vademecum"
	"github.com/jhoicas/farmanaccio-api/pkg/config"
	"github.com/jhoicas/farmanaccio-api/pkg/logger"
)

func main() {
	path := "vademecum.xlsx"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	entries, err := read(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("no se pudo leer el vademécum")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.DB, log)
	if err != nil {
		log.Fatal().Err(err).Msg("no se pudo conectar a PostgreSQL")
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("migración de esquema fallida")
	}

	uc := appinv.NewVademecumUseCase(postgres.NewVademecumRepository(pool), log)
	n, err := uc.Import(ctx, entries)
	if err != nil {
		log.Fatal().Err(err).Msg("importación fallida")
	}
	fmt.Printf("Importadas %d entradas desde %s\n", n, path)
}

func read(path string) ([]*entity.VademecumEntry, error) {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return vademecum.ReadCSV(f, true)
	}
	return vademecum.ReadXLSX(path)
}
