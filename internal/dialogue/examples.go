package dialogue

// Example is a pre-filled tender description usable to start the shortcut
// generation path.
type Example struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// ExampleCategory groups examples by tender category.
type ExampleCategory struct {
	Category string    `json:"category"`
	Examples []Example `json:"examples"`
}

// Examples is the fixed template table served read-only to clients.
var Examples = []ExampleCategory{
	{
		Category: "Servicios",
		Examples: []Example{
			{
				Title: "Servicios de Limpieza",
				Text:  "Necesitamos contratar servicios de limpieza para 5 edificios municipales con una frecuencia diaria. El contrato debe incluir suministro de material de limpieza y personal cualificado.",
			},
			{
				Title: "Mantenimiento Informático",
				Text:  "Requerimos mantenimiento y soporte técnico informático para 200 equipos distribuidos en diferentes departamentos. Incluye actualizaciones, reparaciones y soporte remoto.",
			},
		},
	},
	{
		Category: "Obras",
		Examples: []Example{
			{
				Title: "Rehabilitación de Edificio",
				Text:  "Proyecto de rehabilitación integral de edificio histórico municipal de 1500m². Incluye restauración de fachada, mejora de accesibilidad y actualización de instalaciones.",
			},
			{
				Title: "Pavimentación Urbana",
				Text:  "Obras de pavimentación y mejora de 3 calles del casco urbano, con una longitud total de 800 metros lineales. Incluye renovación de aceras y mejora del alumbrado.",
			},
		},
	},
	{
		Category: "Suministros",
		Examples: []Example{
			{
				Title: "Equipos Informáticos",
				Text:  "Suministro de 50 ordenadores portátiles y 20 equipos de sobremesa para renovación del parque informático municipal. Características técnicas mínimas: i5, 16GB RAM, SSD 512GB.",
			},
			{
				Title: "Mobiliario de Oficina",
				Text:  "Adquisición de mobiliario de oficina para nuevas dependencias: 30 mesas de trabajo, 50 sillas ergonómicas, 15 armarios archivadores y 10 mesas de reuniones.",
			},
		},
	},
	{
		Category: "Consultoría",
		Examples: []Example{
			{
				Title: "Auditoría Energética",
				Text:  "Contratación de servicios de consultoría para realizar auditoría energética de 10 edificios municipales, incluyendo propuestas de mejora y plan de ahorro energético.",
			},
			{
				Title: "Asesoría Legal",
				Text:  "Servicios de asesoramiento jurídico especializado en contratación pública para el departamento de compras, con disponibilidad de 20 horas mensuales durante 12 meses.",
			},
		},
	},
}
