package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/user/garybot/internal/retrieval"
)

var (
	searchLimit  int
	searchCSV    string
	searchIngest bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Busca episodios por palabras clave",
	Long: `Busca episodios cuyo título, resumen, citas, personajes u objetos
contengan alguna de las palabras clave de la consulta.

Ejemplos:
  garyctl search "cohete de arenita"
  garyctl search "gary perdido" --limit 3
  garyctl search "caracol" --csv data/episodios.csv
  garyctl search "caracol" --csv data/episodios.csv --ingest`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", retrieval.DefaultLimit, "número máximo de resultados")
	searchCmd.Flags().StringVar(&searchCSV, "csv", "", "buscar en un CSV en lugar de la base de datos")
	searchCmd.Flags().BoolVar(&searchIngest, "ingest", false, "importar el CSV de --csv antes de buscar")
}

func runSearch(cmd *cobra.Command, args []string) error {
	if searchIngest && searchCSV == "" {
		return fmt.Errorf("--ingest requiere --csv")
	}
	searcher, err := openSearcher(cmd, searchCSV, searchIngest)
	if err != nil {
		return err
	}

	query := strings.Join(args, " ")
	episodes, err := searcher.Search(cmd.Context(), query, searchLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(episodes) == 0 {
		fmt.Fprintln(out, "Sin resultados.")
		return nil
	}
	for i := range episodes {
		fmt.Fprintf(out, "%d. %s\n", i+1, retrieval.FormatCitation(&episodes[i]))
	}
	return nil
}
