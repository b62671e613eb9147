package catalog

import "vocab-coach/pkg/models"

// builtinLessons — встроенный учебный план: для каждого языка
// последовательность дней, каждый день ровно 5 слов и тема для практики
var builtinLessons = map[string][]models.Lesson{
	"en": {
		{
			Language: "en",
			Day:      1,
			Entries: []models.VocabularyEntry{
				{Word: "morning", Translation: "утро", Example: "I drink coffee every morning."},
				{Word: "breakfast", Translation: "завтрак", Example: "We had eggs for breakfast."},
				{Word: "work", Translation: "работа", Example: "She goes to work by bus."},
				{Word: "evening", Translation: "вечер", Example: "In the evening I read books."},
				{Word: "sleep", Translation: "спать", Example: "I usually sleep eight hours."},
			},
			PracticePrompt: "Расскажи о своем обычном дне, используя слова урока.",
		},
		{
			Language: "en",
			Day:      2,
			Entries: []models.VocabularyEntry{
				{Word: "family", Translation: "семья", Example: "My family lives in a small town."},
				{Word: "brother", Translation: "брат", Example: "My brother is older than me."},
				{Word: "parents", Translation: "родители", Example: "My parents often call me."},
				{Word: "together", Translation: "вместе", Example: "We have dinner together on Sundays."},
				{Word: "visit", Translation: "навещать", Example: "I visit my grandmother every week."},
			},
			PracticePrompt: "Расскажи о своей семье, используя слова урока.",
		},
		{
			Language: "en",
			Day:      3,
			Entries: []models.VocabularyEntry{
				{Word: "weather", Translation: "погода", Example: "The weather is nice today."},
				{Word: "rain", Translation: "дождь", Example: "It often rains in autumn."},
				{Word: "sunny", Translation: "солнечный", Example: "Yesterday was warm and sunny."},
				{Word: "cold", Translation: "холодный", Example: "Winters here are very cold."},
				{Word: "umbrella", Translation: "зонт", Example: "Take an umbrella, it may rain."},
			},
			PracticePrompt: "Опиши сегодняшнюю погоду и свое любимое время года.",
		},
		{
			Language: "en",
			Day:      4,
			Entries: []models.VocabularyEntry{
				{Word: "travel", Translation: "путешествовать", Example: "I love to travel in summer."},
				{Word: "airport", Translation: "аэропорт", Example: "The airport is far from the city."},
				{Word: "ticket", Translation: "билет", Example: "I bought a ticket to London."},
				{Word: "hotel", Translation: "отель", Example: "We stayed at a small hotel."},
				{Word: "luggage", Translation: "багаж", Example: "My luggage was too heavy."},
			},
			PracticePrompt: "Расскажи о поездке, в которую ты хотел бы отправиться.",
		},
		{
			Language: "en",
			Day:      5,
			Entries: []models.VocabularyEntry{
				{Word: "restaurant", Translation: "ресторан", Example: "This restaurant serves Italian food."},
				{Word: "order", Translation: "заказывать", Example: "I would like to order a salad."},
				{Word: "delicious", Translation: "вкусный", Example: "The soup was delicious."},
				{Word: "waiter", Translation: "официант", Example: "The waiter brought the menu."},
				{Word: "bill", Translation: "счет", Example: "Could we have the bill, please?"},
			},
			PracticePrompt: "Представь, что ты в ресторане: сделай заказ, используя слова урока.",
		},
	},
	"es": {
		{
			Language: "es",
			Day:      1,
			Entries: []models.VocabularyEntry{
				{Word: "mañana", Translation: "утро", Example: "Por la mañana tomo café."},
				{Word: "desayuno", Translation: "завтрак", Example: "El desayuno es a las ocho."},
				{Word: "trabajo", Translation: "работа", Example: "Voy al trabajo en autobús."},
				{Word: "tarde", Translation: "вечер", Example: "Por la tarde leo libros."},
				{Word: "dormir", Translation: "спать", Example: "Necesito dormir ocho horas."},
			},
			PracticePrompt: "Cuéntame sobre tu día usando las palabras de la lección.",
		},
		{
			Language: "es",
			Day:      2,
			Entries: []models.VocabularyEntry{
				{Word: "familia", Translation: "семья", Example: "Mi familia vive en Madrid."},
				{Word: "hermano", Translation: "брат", Example: "Mi hermano es mayor que yo."},
				{Word: "padres", Translation: "родители", Example: "Mis padres me llaman a menudo."},
				{Word: "juntos", Translation: "вместе", Example: "Cenamos juntos los domingos."},
				{Word: "visitar", Translation: "навещать", Example: "Visito a mi abuela cada semana."},
			},
			PracticePrompt: "Describe a tu familia usando las palabras de la lección.",
		},
		{
			Language: "es",
			Day:      3,
			Entries: []models.VocabularyEntry{
				{Word: "tiempo", Translation: "погода", Example: "Hoy hace buen tiempo."},
				{Word: "lluvia", Translation: "дождь", Example: "La lluvia es fuerte en otoño."},
				{Word: "soleado", Translation: "солнечный", Example: "Ayer fue un día soleado."},
				{Word: "frío", Translation: "холодный", Example: "El invierno aquí es muy frío."},
				{Word: "paraguas", Translation: "зонт", Example: "Lleva el paraguas, va a llover."},
			},
			PracticePrompt: "Describe el tiempo de hoy y tu estación favorita.",
		},
	},
	"fr": {
		{
			Language: "fr",
			Day:      1,
			Entries: []models.VocabularyEntry{
				{Word: "matin", Translation: "утро", Example: "Le matin, je bois du café."},
				{Word: "petit-déjeuner", Translation: "завтрак", Example: "Le petit-déjeuner est à huit heures."},
				{Word: "travail", Translation: "работа", Example: "Je vais au travail en bus."},
				{Word: "soir", Translation: "вечер", Example: "Le soir, je lis des livres."},
				{Word: "dormir", Translation: "спать", Example: "Je dois dormir huit heures."},
			},
			PracticePrompt: "Raconte ta journée en utilisant les mots de la leçon.",
		},
		{
			Language: "fr",
			Day:      2,
			Entries: []models.VocabularyEntry{
				{Word: "famille", Translation: "семья", Example: "Ma famille habite à Paris."},
				{Word: "frère", Translation: "брат", Example: "Mon frère est plus âgé que moi."},
				{Word: "parents", Translation: "родители", Example: "Mes parents m'appellent souvent."},
				{Word: "ensemble", Translation: "вместе", Example: "Nous dînons ensemble le dimanche."},
				{Word: "rendre visite", Translation: "навещать", Example: "Je rends visite à ma grand-mère."},
			},
			PracticePrompt: "Décris ta famille en utilisant les mots de la leçon.",
		},
		{
			Language: "fr",
			Day:      3,
			Entries: []models.VocabularyEntry{
				{Word: "temps", Translation: "погода", Example: "Il fait beau temps aujourd'hui."},
				{Word: "pluie", Translation: "дождь", Example: "La pluie tombe souvent en automne."},
				{Word: "ensoleillé", Translation: "солнечный", Example: "Hier, c'était une journée ensoleillée."},
				{Word: "froid", Translation: "холодный", Example: "L'hiver est très froid ici."},
				{Word: "parapluie", Translation: "зонт", Example: "Prends ton parapluie, il va pleuvoir."},
			},
			PracticePrompt: "Décris le temps d'aujourd'hui et ta saison préférée.",
		},
	},
}
