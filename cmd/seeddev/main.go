// cmd/seeddev/main.go: seeds a legal entity and a recipient PEPPOL
// identifier for local development.
// Usage: SEED_TENANT_ID=tenant-dev go run ./cmd/seeddev
package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog/log"

	"peppolsheet/internal/config"
	"peppolsheet/internal/infra"
	"peppolsheet/internal/model"
	"peppolsheet/internal/repository"
	"peppolsheet/internal/ubl"
)

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	tenantID := getenv("SEED_TENANT_ID", "tenant-dev")
	storecoveID, err := strconv.ParseInt(getenv("SEED_STORECOVE_LEGAL_ENTITY_ID", "1"), 10, 64)
	if err != nil {
		log.Fatal().Err(err).Msg("SEED_STORECOVE_LEGAL_ENTITY_ID must be an integer")
	}
	recipient, err := ubl.SplitPeppolIdentifier(getenv("SEED_RECIPIENT", "0208:0123456789"))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid SEED_RECIPIENT")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}
	ctx := context.Background()

	entity := &model.LegalEntity{
		TenantID:               tenantID,
		Name:                   getenv("SEED_LEGAL_ENTITY_NAME", "Dev Supplies BV"),
		CountryCode:            "NL",
		StorecoveLegalEntityID: storecoveID,
	}
	if err := repository.NewLegalEntityRepository(db).Create(ctx, entity); err != nil {
		log.Fatal().Err(err).Msg("insert legal entity")
	}

	identifier := &model.PeppolIdentifier{
		TenantID:   tenantID,
		Label:      "Dev recipient",
		Scheme:     recipient.SchemeID,
		Identifier: recipient.Value,
	}
	if err := repository.NewPeppolIdentifierRepository(db).Upsert(ctx, identifier); err != nil {
		log.Fatal().Err(err).Msg("upsert peppol identifier")
	}

	fmt.Printf("tenant %s: legal_entity_id=%d recipient_peppol_identifier_id=%d (%s)\n",
		tenantID, entity.ID, identifier.ID, identifier.Address())
}
