package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/user/garybot/internal/character"
	"github.com/user/garybot/internal/export"
	"github.com/user/garybot/internal/service"
)

var (
	askSheet   string
	askCSV     string
	askSaveDoc bool
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Responde como el personaje sin usar el modelo",
	Long: `Responde con una plantilla en la voz del personaje y cita hasta
dos episodios relacionados.

Con --save-doc la respuesta se guarda en EXPORT_DIR como Markdown y HTML.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var personaCmd = &cobra.Command{
	Use:   "persona",
	Short: "Muestra el prompt de personalidad de la ficha",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sheet, err := loadSheet(askSheet)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sheet.PersonaPrompt())
		if verbose {
			fmt.Fprintln(out, "Descripción visual: "+sheet.VisualDescription("—"))
		}
		return nil
	},
}

func init() {
	askCmd.Flags().StringVar(&askSheet, "sheet", "", "ruta de la ficha (por defecto CHARACTER_SHEET)")
	askCmd.Flags().StringVar(&askCSV, "csv", "", "buscar episodios en un CSV en lugar de la base de datos")
	askCmd.Flags().BoolVar(&askSaveDoc, "save-doc", false, "guardar la respuesta como documento")

	personaCmd.Flags().StringVar(&askSheet, "sheet", "", "ruta de la ficha (por defecto CHARACTER_SHEET)")
}

func loadSheet(path string) (*character.Sheet, error) {
	if path == "" {
		path = cfg.CharacterSheet
	}
	return character.Load(path)
}

func runAsk(cmd *cobra.Command, args []string) error {
	sheet, err := loadSheet(askSheet)
	if err != nil {
		return err
	}
	searcher, err := openSearcher(cmd, askCSV, false)
	if err != nil {
		return err
	}

	question := strings.Join(args, " ")
	svc := service.NewChatService(service.ChatOptions{Searcher: searcher, Logger: zlog})
	answer, err := svc.AnswerOffline(cmd.Context(), sheet, question)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, answer)

	if askSaveDoc {
		mdPath, htmlPath, err := export.SaveAnswer(cfg.ExportDir, sheet.Name, question, answer, time.Now())
		if err != nil {
			return fmt.Errorf("save document: %w", err)
		}
		fmt.Fprintf(out, "\nDocumento guardado: %s\nDocumento guardado: %s\n", mdPath, htmlPath)
	}
	return nil
}
