package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/garybot/internal/character"
	"github.com/user/garybot/internal/service"
	"github.com/user/garybot/internal/utils"
)

var (
	enrichCharacter string

	scrapeURL   string
	scrapeOut   string
	scrapeLimit int

	generateTotal int
	generateBatch int
	generateOut   string

	researchDir string
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Muestra el progreso del enriquecimiento",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := getRepos()
		if err != nil {
			return err
		}
		st, err := service.NewStatusService(r.Episode).Status(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Episodios totales: %d\nEnriquecidos: %d\nPendientes: %d\nProgreso: %.2f%%\n",
			st.TotalEpisodes, st.EnrichedEpisodes, st.Pending, st.Percentage)
		return nil
	},
}

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Completa la información visual de los episodios del personaje",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := getRepos()
		if err != nil {
			return err
		}
		client, err := getAI()
		if err != nil {
			return err
		}
		name := enrichCharacter
		if name == "" {
			name = cfg.EnrichCharacter
		}

		res, err := service.NewEnrichmentService(r.Episode, client, name, zlog).RunOnce(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Episodios encontrados: %d\nActualizados: %d\nFallidos: %d\n",
			res.Found, res.Updated, res.Failed)
		return nil
	},
}

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Extrae episodios de la wiki y los guarda en CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getAI()
		if err != nil {
			return err
		}
		listURL := scrapeURL
		if listURL == "" {
			listURL = cfg.EpisodeListURL
		}

		scraper := service.NewEpisodeScraper(utils.NewHTTPClient(30*time.Second), client, zlog)
		episodes, err := scraper.Scrape(cmd.Context(), listURL, scrapeLimit)
		if err != nil && len(episodes) == 0 {
			return err
		}
		if err := writeEpisodesFile(scrapeOut, episodes, false); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Guardados %d episodios en %s\n", len(episodes), scrapeOut)
		return err
	},
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Genera la lista de episodios con IA y la guarda en CSV",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getAI()
		if err != nil {
			return err
		}
		episodes, err := service.NewEpisodeGenerator(client, zlog).Generate(cmd.Context(), generateTotal, generateBatch)
		if err != nil && len(episodes) == 0 {
			return err
		}
		if err := writeEpisodesFile(generateOut, episodes, false); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Guardados %d episodios en %s\n", len(episodes), generateOut)
		return err
	},
}

var researchCmd = &cobra.Command{
	Use:   "research <name> <url...>",
	Short: "Crea la ficha de un personaje a partir de páginas de referencia",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getAI()
		if err != nil {
			return err
		}
		researcher := service.NewCharacterResearcher(utils.NewHTTPClient(30*time.Second), client, zlog)
		sheet, err := researcher.Research(cmd.Context(), args[0], args[1:])
		if err != nil {
			return err
		}

		path := filepath.Join(researchDir, character.FileName(sheet.Name))
		if err := character.Save(path, sheet); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Ficha guardada en %s\n", path)
		return nil
	},
}

func init() {
	enrichCmd.Flags().StringVar(&enrichCharacter, "character", "", "personaje a buscar (por defecto ENRICH_CHARACTER)")

	scrapeCmd.Flags().StringVar(&scrapeURL, "url", "", "página con la lista de episodios (por defecto EPISODE_LIST_URL)")
	scrapeCmd.Flags().StringVarP(&scrapeOut, "out", "o", "data/episodios_scraped.csv", "CSV de salida")
	scrapeCmd.Flags().IntVar(&scrapeLimit, "limit", 0, "procesar solo los primeros N episodios (0 = todos)")

	generateCmd.Flags().IntVar(&generateTotal, "total", 300, "número de episodios a generar")
	generateCmd.Flags().IntVar(&generateBatch, "batch", 10, "episodios por petición")
	generateCmd.Flags().StringVarP(&generateOut, "out", "o", "data/episodios_generados.csv", "CSV de salida")

	researchCmd.Flags().StringVar(&researchDir, "dir", "data/ficha", "directorio de fichas")
}
