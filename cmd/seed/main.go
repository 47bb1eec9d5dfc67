// seed carga o elimina los datos de desarrollo (tours, usuarios y reseñas).
//
// Uso: go run ./cmd/seed --import [--dir dev-data]
//
//	go run ./cmd/seed --delete
//
// La importación no valida los documentos, pero sí aplica conversiones, defaults y el hash de passwords.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"

	"github.com/jhoicas/tours-api/internal/application/resources"
	"github.com/jhoicas/tours-api/internal/application/usecase"
	"github.com/jhoicas/tours-api/internal/domain/schema"
	"github.com/jhoicas/tours-api/internal/infrastructure/mongodb"
	"github.com/jhoicas/tours-api/pkg/config"
	"github.com/jhoicas/tours-api/pkg/logger"
)

func main() {
	var (
		doImport = pflag.Bool("import", false, "importar los archivos JSON de --dir")
		doDelete = pflag.Bool("delete", false, "eliminar todos los documentos de tours, users y reviews")
		dir      = pflag.String("dir", "dev-data", "directorio con tours.json, users.json y reviews.json")
	)
	pflag.Parse()
	if *doImport == *doDelete {
		fmt.Fprintln(os.Stderr, "Uso: seed --import|--delete [--dir dev-data]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cargar configuración: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.Log.Level, Service: "seed"})

	ctx := context.Background()
	client, err := mongodb.NewClient(ctx, cfg.Mongo)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a MongoDB")
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.Mongo.Database)

	reg, err := resources.New()
	if err != nil {
		log.Fatal().Err(err).Msg("esquemas de recursos")
	}

	// usuarios primero: tours y reseñas los referencian
	for _, s := range reg.All() {
		uc := usecase.NewResourceUseCase(mongodb.NewStore(db, s), usecase.ResourceHooks{})
		if *doDelete {
			n, err := uc.DeleteAll(ctx)
			if err != nil {
				log.Fatal().Err(err).Str("collection", s.Collection).Msg("eliminar documentos")
			}
			log.Info().Str("collection", s.Collection).Int64("deleted", n).Msg("documentos eliminados")
			continue
		}

		docs, err := readDocuments(filepath.Join(*dir, s.Collection+".json"))
		if err != nil {
			log.Fatal().Err(err).Str("collection", s.Collection).Msg("leer datos")
		}
		n, err := uc.Import(ctx, docs)
		if err != nil {
			log.Fatal().Err(err).Str("collection", s.Collection).Msg("importar documentos")
		}
		log.Info().Str("collection", s.Collection).Int("inserted", n).Msg("documentos importados")
	}

	if *doImport {
		if err := mongodb.EnsureIndexes(ctx, db, reg.All()...); err != nil {
			log.Fatal().Err(err).Msg("creación de índices")
		}
	}
}

// readDocuments lee un arreglo JSON de documentos.
func readDocuments(path string) ([]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var docs []map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decodificar %s: %w", path, err)
	}
	for _, d := range docs {
		// los archivos exportados pueden traer la versión
		delete(d, schema.VersionField)
	}
	return docs, nil
}
