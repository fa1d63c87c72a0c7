package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/user/garybot/internal/model"
	"github.com/user/garybot/internal/retrieval"
	"github.com/user/garybot/internal/service"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Crea las tablas de episodios e historial",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := getRepos(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Base de datos inicializada.")
		return nil
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <csv>",
	Short: "Reemplaza la tabla de episodios con el contenido de un CSV",
	Long: `Vacía la tabla de episodios e importa todas las filas del CSV.

El CSV debe tener las columnas season, episode, code, title, summary,
quotes y characters. Las columnas de enriquecimiento son opcionales.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := ingestFile(cmd, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Importados %d episodios desde %s\n", n, args[0])
		return nil
	},
}

func ingestFile(cmd *cobra.Command, path string) (int, error) {
	r, err := getRepos()
	if err != nil {
		return 0, err
	}
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	return service.NewIngestService(r.Episode, zlog).IngestCSV(cmd.Context(), f)
}

// openSearcher csvPath 非空且不导入时在内存中检索，否则查询数据库
func openSearcher(cmd *cobra.Command, csvPath string, ingestFirst bool) (*retrieval.Searcher, error) {
	if csvPath != "" && !ingestFirst {
		episodes, err := readEpisodesFile(csvPath)
		if err != nil {
			return nil, err
		}
		return retrieval.NewSearcher(retrieval.NewMemoryStore(episodes...)), nil
	}

	if csvPath != "" {
		n, err := ingestFile(cmd, csvPath)
		if err != nil {
			return nil, err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Importados %d episodios desde %s\n", n, csvPath)
	}
	r, err := getRepos()
	if err != nil {
		return nil, err
	}
	return retrieval.NewSearcher(r.Episode), nil
}

func readEpisodesFile(path string) ([]model.Episode, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	episodes, err := service.ReadEpisodesCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for i := range episodes {
		episodes[i].ID = i + 1
	}
	return episodes, nil
}

func writeEpisodesFile(path string, episodes []model.Episode, withEnrichment bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := service.WriteEpisodesCSV(f, episodes, withEnrichment); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
