// README: ANTT normativos shipped with the service (coefficient BRL/km, fixed fee BRL, effective date).
package tariff

import "github.com/shopspring/decimal"

// DefaultRows returns the published ANTT table, newest first as the regulator lists it.
// The 17/02/2023 portaria takes effect on 07/02/2023 as published.
func DefaultRows() []Row {
	return []Row{
		row("PORTARIA Nº 3, DE 7 DE fevereiro DE 2025", "7.639", "623.070", "07/02/2025"),
		row("RESOLUÇÃO Nº 6.046, DE 11 DE JULHO DE 2024", "7.486", "675.050", "11/07/2024"),
		row("RESOLUÇÃO Nº 6.034, DE 18 DE JANEIRO DE 2024", "7.413", "664.970", "18/01/2024"),
		row("PORTARIA Nº 20, DE 28 DE AGOSTO DE 2023", "7.277", "618.410", "28/08/2023"),
		row("PORTARIA Nº 19, DE 21 DE AGOSTO DE 2023", "6.933", "618.410", "21/08/2023"),
		row("RESOLUÇÃO Nº 6.022, DE 20 DE JULHO DE 2023", "6.646", "618.410", "20/07/2023"),
		row("PORTARIA Nº 13, DE 5 DE JUNHO DE 2023", "6.608", "597.020", "05/06/2023"),
		row("PORTARIA Nº 11, DE 22 DE MAIO DE 2023", "6.795", "597.020", "22/05/2023"),
		row("PORTARIA Nº 8, DE 25 DE ABRIL DE 2023", "7.001", "597.020", "25/04/2023"),
		row("PORTARIA Nº 5, DE 17 DE FEVEREIRO DE 2023", "7.195", "597.020", "07/02/2023"),
		row("RESOLUÇÃO Nº 6.006, DE 19 DE JANEIRO DE 2023", "7.426", "597.020", "19/01/2023"),
		row("PORTARIA SUROC Nº 219, DE 3 DE OUTUBRO DE 2022", "6.938", "463.840", "03/10/2022"),
		row("PORTARIA Nº 214, DE 22 DE AGOSTO DE 2022", "7.188", "463.840", "22/08/2022"),
		row("RESOLUÇÃO Nº 5.985, DE 19 DE JULHO DE 2022", "7.471", "463.840", "19/07/2022"),
		row("PORTARIA Nº 210, DE 24 DE JUNHO DE 2022", "7.381", "436.580", "24/06/2022"),
		row("PORTARIA Nº 169, DE 18 DE MARÇO DE 2022", "6.802", "436.580", "18/03/2022"),
		row("RESOLUÇÃO Nº 5.959, DE 20 DE JANEIRO DE 2022", "5.969", "436.580", "20/01/2022"),
		row("PORTARIA Nº 496, DE 19 DE OUTUBRO DE 2021", "5.436", "398.380", "19/10/2021"),
		row("RESOLUÇÃO Nº 5.949, DE 13 DE JULHO DE 2021", "5.145", "398.380", "13/07/2021"),
		row("RESOLUÇÃO Nº 5.923, DE 18 DE JANEIRO DE 2021", "4.487", "380.860", "18/01/2021"),
		row("PORTARIA Nº 399, DE 3 DE NOVEMBRO DE 2020", "4.380", "369.700", "03/11/2020"),
		row("RESOLUÇÃO Nº 5.899, DE 14 DE JULHO DE 2020", "4.099", "369.700", "14/07/2020"),
		row("RESOLUÇÃO Nº 5.890, DE 26 DE MAIO DE 2020", "4.423", "413.790", "26/05/2020"),
	}
}

func row(label, coefficient, fixedFee, effective string) Row {
	return Row{
		Label:         label,
		EffectiveDate: effective,
		Coefficient:   decimal.RequireFromString(coefficient),
		FixedFee:      decimal.RequireFromString(fixedFee),
	}
}
