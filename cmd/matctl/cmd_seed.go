package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/materiales-api/internal/application/dto"
	"github.com/jhoicas/materiales-api/internal/application/usecase"
	"github.com/jhoicas/materiales-api/internal/domain"
	"github.com/jhoicas/materiales-api/internal/domain/entity"
	"github.com/jhoicas/materiales-api/internal/infrastructure/postgres"
)

// defaultOffices oficinas con rol propio en la tabla de permisos.
var defaultOffices = []dto.CreateOfficeRequest{
	{Name: "Principal", Location: "Bogotá", IsPrincipal: true},
	{Name: "Pepe Sierra", Location: "Bogotá"},
	{Name: "Polo Club", Location: "Bogotá"},
	{Name: "Nogal", Location: "Bogotá"},
	{Name: "Morato", Location: "Bogotá"},
	{Name: "Cedritos", Location: "Bogotá"},
	{Name: "Coq", Location: "Bogotá"},
	{Name: "Lourdes", Location: "Bogotá"},
	{Name: "Kennedy", Location: "Bogotá"},
	{Name: "Cali", Location: "Cali"},
	{Name: "Medellín", Location: "Medellín"},
	{Name: "Pereira", Location: "Pereira"},
	{Name: "Bucaramanga", Location: "Bucaramanga"},
	{Name: "Cartagena", Location: "Cartagena"},
	{Name: "Tunja", Location: "Tunja"},
	{Name: "Neiva", Location: "Neiva"},
}

var seedLatin1 bool

var seedOfficesCmd = &cobra.Command{
	Use:   "seed-offices [oficinas.csv]",
	Short: "Crea las oficinas base (o las de un CSV) y el aprobador por defecto",
	Long: `Crea las oficinas que no existan. Sin argumento usa la lista incorporada.

El CSV usa ';' como separador y columnas: nombre;director;ubicación;correo;principal
La primera fila se toma como encabezado. --latin1 para archivos exportados en ISO-8859-1.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSeedOffices,
}

func init() {
	seedOfficesCmd.Flags().BoolVar(&seedLatin1, "latin1", false, "el CSV está en ISO-8859-1")
}

func runSeedOffices(cmd *cobra.Command, args []string) error {
	offices := defaultOffices
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("abrir CSV: %w", err)
		}
		defer f.Close()
		var r io.Reader = f
		if seedLatin1 {
			r = transform.NewReader(f, charmap.ISO8859_1.NewDecoder())
		}
		if offices, err = readOffices(r); err != nil {
			return err
		}
	}

	ctx := cmd.Context()
	e, err := connect(ctx)
	if err != nil {
		return err
	}
	defer e.pool.Close()

	uc := usecase.NewOfficeUseCase(postgres.NewOfficeRepository(e.pool))
	created, skipped, err := seedOffices(ctx, uc, offices)
	if err != nil {
		return err
	}
	if err := postgres.NewApproverRepository(e.pool).Put(ctx, &entity.Approver{
		ID: "aprobador-default", Name: "Aprobador general", IsActive: true,
	}); err != nil {
		return fmt.Errorf("aprobador por defecto: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "oficinas creadas: %d, existentes: %d\n", created, skipped)
	return nil
}

// seedOffices crea las oficinas; las que ya existen (por nombre) se omiten.
func seedOffices(ctx context.Context, uc *usecase.OfficeUseCase, offices []dto.CreateOfficeRequest) (created, skipped int, err error) {
	for _, o := range offices {
		if _, err := uc.Create(ctx, o); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				skipped++
				continue
			}
			return created, skipped, fmt.Errorf("oficina %s: %w", o.Name, err)
		}
		created++
	}
	return created, skipped, nil
}

func readOffices(r io.Reader) ([]dto.CreateOfficeRequest, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("leer CSV: %w", err)
	}
	var out []dto.CreateOfficeRequest
	for i, row := range rows {
		if i == 0 || len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		o := dto.CreateOfficeRequest{Name: strings.TrimSpace(row[0])}
		if len(row) > 1 {
			o.Director = strings.TrimSpace(row[1])
		}
		if len(row) > 2 {
			o.Location = strings.TrimSpace(row[2])
		}
		if len(row) > 3 {
			o.Email = strings.TrimSpace(row[3])
		}
		if len(row) > 4 {
			switch strings.ToLower(strings.TrimSpace(row[4])) {
			case "1", "si", "sí", "true", "x":
				o.IsPrincipal = true
			}
		}
		out = append(out, o)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("el CSV no contiene oficinas")
	}
	return out, nil
}
