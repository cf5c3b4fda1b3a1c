package accesses

import (
	"io"
	"strconv"
	"strings"

	"github.com/notargets/DGSched/loopnest"
	"github.com/olekukonko/tablewriter"
)

// bufferDecls is implemented by registries that also keep declarations,
// such as *loopnest.Function
type bufferDecls interface {
	Buffer(id int) *loopnest.BufferSpec
}

// Report renders one table row per access. Type and Bytes are filled when
// the registry knows the buffer declarations.
func (a *Accesses) Report(w io.Writer) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"#", "RW", "Buffer", "ID", "Type", "Bytes", "Matrix"})

	decls, _ := a.registry.(bufferDecls)
	for i := range a.List {
		m := &a.List[i]
		rw := "R"
		if m.IsWrite {
			rw = "W"
		}
		typ, size := "-", "-"
		if decls != nil {
			if spec := decls.Buffer(m.BufferID); spec != nil {
				typ = loopnest.TypeName(spec.EffectiveType())
				size = strconv.FormatInt(spec.Footprint(), 10)
			}
		}
		table.Append([]string{
			strconv.Itoa(i),
			rw,
			m.BufferName,
			strconv.Itoa(m.BufferID),
			typ,
			size,
			m.String(),
		})
	}
	table.Render()
}

// String prints the rows separated by semicolons, e.g. [1 0 0; 0 1 -1]
func (am *AccessMatrix) String() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for r, row := range am.Matrix {
		if r > 0 {
			sb.WriteString("; ")
		}
		for c, v := range row {
			if c > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(v))
		}
	}
	sb.WriteByte(']')
	return sb.String()
}
