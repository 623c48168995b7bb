package model

import (
	"fmt"
	"time"
)

// TipoDocumento identifies a numbering series. Closed enumeration so an
// invalid series can't be referenced at compile time.
type TipoDocumento string

const (
	DocFactura TipoDocumento = "FACTURA"
)

// SecuenciaDocumento holds the next number to allocate for one document
// type. ProximoNumero is monotonically non-decreasing — once advanced past,
// a number is never reused. The row is a hot shared resource: readers must
// take a FOR UPDATE lock before reading ProximoNumero (see secuencia_repo).
// Seeded at startup from config; treated as configuration, not user data.
type SecuenciaDocumento struct {
	ID            uint          `gorm:"primaryKey"`
	Tipo          TipoDocumento `gorm:"type:varchar(30);uniqueIndex;not null"`
	ProximoNumero int64         `gorm:"not null;default:1"`
	Prefijo       string        `gorm:"type:varchar(10);not null"`
	ConAnio       bool          `gorm:"not null;default:true;column:con_anio"`
	Relleno       int           `gorm:"not null;default:6"`
	UpdatedAt     time.Time
}

func (SecuenciaDocumento) TableName() string { return "secuencias_documento" }

// Format renders counter n as a document number:
// prefijo + "-" + [year + "-" when ConAnio] + zero-padded counter.
func (s *SecuenciaDocumento) Format(n int64, at time.Time) string {
	if s.ConAnio {
		return fmt.Sprintf("%s-%d-%0*d", s.Prefijo, at.Year(), s.Relleno, n)
	}
	return fmt.Sprintf("%s-%0*d", s.Prefijo, s.Relleno, n)
}
