// Package directory autentica usuarios contra el directorio activo corporativo.
package directory

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-ldap/ldap/v3"

	"github.com/jhoicas/materiales-api/internal/application/auth"
)

var _ auth.Directory = (*LDAP)(nil)

// Config parámetros de conexión.
type Config struct {
	URL             string // ldap://host:389 o ldaps://host:636
	Domain          string // sufijo UPN
	SearchBase      string
	ServiceUser     string
	ServicePassword string
	Timeout         time.Duration
}

var searchAttributes = []string{"sAMAccountName", "displayName", "cn", "mail", "department", "memberOf"}

// LDAP adaptador de auth.Directory sobre go-ldap.
type LDAP struct {
	cfg Config
}

// NewLDAP construye el adaptador. No abre conexión hasta el primer login.
func NewLDAP(cfg Config) *LDAP {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &LDAP{cfg: cfg}
}

// Authenticate hace bind con las credenciales del usuario y lee sus atributos.
func (d *LDAP) Authenticate(ctx context.Context, username, password string) (*auth.DirectoryUser, error) {
	username = strings.TrimSpace(username)
	// un bind con contraseña vacía es anónimo y el servidor lo acepta
	if username == "" || password == "" {
		return nil, auth.ErrInvalidCredentials
	}
	conn, err := d.dial(ctx)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	if err := conn.Bind(d.bindName(username), password); err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultInvalidCredentials) {
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("ldap bind: %w", err)
	}

	if d.cfg.ServiceUser != "" {
		if err := conn.Bind(d.bindName(d.cfg.ServiceUser), d.cfg.ServicePassword); err != nil {
			return nil, fmt.Errorf("ldap bind de servicio: %w", err)
		}
	}
	if d.cfg.SearchBase == "" {
		return &auth.DirectoryUser{Username: accountName(username)}, nil
	}

	req := ldap.NewSearchRequest(
		d.cfg.SearchBase,
		ldap.ScopeWholeSubtree, ldap.NeverDerefAliases,
		1, int(d.cfg.Timeout/time.Second), false,
		fmt.Sprintf("(&(objectClass=user)(sAMAccountName=%s))", ldap.EscapeFilter(accountName(username))),
		searchAttributes,
		nil,
	)
	res, err := conn.Search(req)
	if err != nil {
		if ldap.IsErrorWithCode(err, ldap.LDAPResultNoSuchObject) {
			return &auth.DirectoryUser{Username: accountName(username)}, nil
		}
		return nil, fmt.Errorf("ldap search: %w", err)
	}
	if len(res.Entries) == 0 {
		return &auth.DirectoryUser{Username: accountName(username)}, nil
	}
	return entryToUser(res.Entries[0], username), nil
}

func (d *LDAP) dial(ctx context.Context) (*ldap.Conn, error) {
	dialer := &net.Dialer{Timeout: d.cfg.Timeout}
	if deadline, ok := ctx.Deadline(); ok {
		dialer.Deadline = deadline
	}
	conn, err := ldap.DialURL(d.cfg.URL, ldap.DialWithDialer(dialer))
	if err != nil {
		return nil, fmt.Errorf("ldap dial %s: %w", d.cfg.URL, err)
	}
	conn.SetTimeout(d.cfg.Timeout)
	return conn, nil
}

// bindName arma el UPN (usuario@dominio) salvo que ya venga como UPN o DOMINIO\usuario.
func (d *LDAP) bindName(username string) string {
	if strings.Contains(username, "@") || strings.Contains(username, `\`) || d.cfg.Domain == "" {
		return username
	}
	return username + "@" + d.cfg.Domain
}

// accountName quita dominio: "jperez@corp.local" y `CORP\jperez` -> "jperez".
func accountName(username string) string {
	if i := strings.Index(username, "@"); i >= 0 {
		username = username[:i]
	}
	if i := strings.LastIndex(username, `\`); i >= 0 {
		username = username[i+1:]
	}
	return username
}

func entryToUser(e *ldap.Entry, username string) *auth.DirectoryUser {
	du := &auth.DirectoryUser{
		Username:   e.GetAttributeValue("sAMAccountName"),
		Name:       e.GetAttributeValue("displayName"),
		Email:      e.GetAttributeValue("mail"),
		Department: e.GetAttributeValue("department"),
		Groups:     groupNames(e.GetAttributeValues("memberOf")),
	}
	if du.Username == "" {
		du.Username = accountName(username)
	}
	if du.Name == "" {
		du.Name = e.GetAttributeValue("cn")
	}
	return du
}

// groupNames extrae el CN de cada DN de memberOf.
func groupNames(dns []string) []string {
	out := make([]string, 0, len(dns))
	for _, raw := range dns {
		dn, err := ldap.ParseDN(raw)
		if err != nil || len(dn.RDNs) == 0 {
			continue
		}
		for _, attr := range dn.RDNs[0].Attributes {
			if strings.EqualFold(attr.Type, "CN") {
				out = append(out, attr.Value)
			}
		}
	}
	return out
}
