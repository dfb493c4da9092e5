// Command token emite un JWT de prueba para la API (no hay login propio: la identidad la
// provee el sistema de usuarios del ERP).
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/jwt"
)

func main() {
	userID := flag.String("user", "", "ID del usuario")
	companyID := flag.String("company", "", "ID de la empresa")
	role := flag.String("role", "consulta", "admin | supervisor | bodeguero | consulta")
	flag.Parse()

	if *userID == "" || *companyID == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *role == "" || !jwt.ValidRole(*role) {
		fmt.Fprintf(os.Stderr, "rol inválido: %s\n", *role)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	if cfg.JWT.Secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET no está definido")
		os.Exit(1)
	}
	id := jwt.Identity{UserID: *userID, CompanyID: *companyID, Role: *role}
	tok, err := jwt.Generate(cfg.JWT.Secret, id, cfg.JWT.Issuer, time.Duration(cfg.JWT.Expiration)*time.Minute)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(tok)
}
