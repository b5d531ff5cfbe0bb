package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func TestReadOffices(t *testing.T) {
	in := "nombre;director;ubicacion;correo;principal\n" +
		"Principal;Ana Ruiz;Bogotá;principal@example.com;si\n" +
		"Cali; Luis Mora ;Cali\n" +
		";;;\n"
	offices, err := readOffices(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, offices, 2)

	assert.Equal(t, "Principal", offices[0].Name)
	assert.True(t, offices[0].IsPrincipal)
	assert.Equal(t, "principal@example.com", offices[0].Email)

	assert.Equal(t, "Cali", offices[1].Name)
	assert.Equal(t, "Luis Mora", offices[1].Director)
	assert.False(t, offices[1].IsPrincipal)
}

func TestReadOffices_Latin1(t *testing.T) {
	encoded, err := charmap.ISO8859_1.NewEncoder().String("nombre\nMedellín\n")
	require.NoError(t, err)

	offices, err := readOffices(transform.NewReader(strings.NewReader(encoded), charmap.ISO8859_1.NewDecoder()))
	require.NoError(t, err)
	require.Len(t, offices, 1)
	assert.Equal(t, "Medellín", offices[0].Name)
}

func TestReadOffices_EmptyFile(t *testing.T) {
	_, err := readOffices(strings.NewReader("nombre\n"))
	assert.Error(t, err)
}

func TestDefaultOffices_SinglePrincipal(t *testing.T) {
	principals := 0
	for _, o := range defaultOffices {
		if o.IsPrincipal {
			principals++
		}
	}
	assert.Equal(t, 1, principals)
}
