package demos

const sentimentDescription = `Sentiment Analysis predicts how positive/negative an input is on a scale of 1-5. The model is the Biattentive Classification Network from the [ELMo paper](https://arxiv.org/abs/1802.05365). This model is trained on the 5-way classification setting of the [Stanford Sentiment Treebank](https://nlp.stanford.edu/sentiment/treebank.html).`

const nerDescription = `The named entity recognition model identifies named entities (people, locations, organizations, and miscellaneous) in the input text. This model is the "baseline" model described in [Peters, Ammar, Bhagavatula, and Power 2017](https://www.semanticscholar.org/paper/Semi-supervised-sequence-tagging-with-bidirectiona-Peters-Ammar/73e59cb556351961d1bdd4ab68cbbefc5662a9fc). It uses a Gated Recurrent Unit (GRU) character encoder as well as a GRU phrase encoder, and it starts with pretrained [GloVe vectors](https://nlp.stanford.edu/projects/glove/) for its token embeddings. It was trained on the [CoNLL-2003](https://www.clips.uantwerpen.be/conll2003/ner/) NER dataset. It is not state of the art on that task, but it's not terrible either.`

const entailmentDescription = `Textual Entailment (TE) takes a pair of sentences and predicts whether the facts in the first necessarily imply the facts in the second one. This page demonstrates a reimplementation of [the decomposable attention model (Parikh et al, 2017)](https://www.semanticscholar.org/paper/A-Decomposable-Attention-Model-for-Natural-Languag-Parikh-T%C3%A4ckstr%C3%B6m/07a9478e87a8304fc3267fa16e83e9f3bbd98b27), which was state of the art for [the SNLI benchmark](https://nlp.stanford.edu/projects/snli/) (short sentences about visual scenes) in 2016. Rather than pre-trained GloVe vectors, this model uses [ELMo embeddings](https://arxiv.org/abs/1802.05365), which are completely character based and improve performance by 2%.`

// Builtin returns the demos shipped with nlpdemo, in display order.
func Builtin() []*Demo {
	return []*Demo{
		{
			Slug:        "sentiment-analysis",
			Title:       "Sentiment Analysis",
			Kind:        KindSentiment,
			Task:        "sentiment-analysis",
			Summary:     "Sentiment Analysis predicts how positive/negative an input is on a scale of 1-5…",
			Description: renderMarkdown(sentimentDescription),
			Fields: []Field{
				{Name: "sentence", Label: "Input", Type: FieldText, Placeholder: `E.g. "This movie is amazing"`},
			},
			Examples: []Example{
				{"sentence": "a very well-made, funny and entertaining picture."},
				{"sentence": "so unremittingly awful that labeling it a dog probably constitutes cruelty to canines"},
				{"sentence": "all the amped-up tony hawk-style stunts and thrashing rap-metal can't disguise the fact that, really, we've been here, done that."},
				{"sentence": "visually imaginative, thematically instructive and thoroughly delightful, it takes us on a roller-coaster ride from innocence to experience without even a hint of that typical kiddie-flick sentimentality."},
			},
			Techniques:    []Technique{TechniqueInputReduction, TechniqueHotFlip},
			Interpreters:  interpreters,
			HotFlipTarget: "input",
		},
		{
			Slug:        "named-entity-recognition",
			Title:       "Named Entity Recognition",
			Kind:        KindNER,
			Task:        "named-entity-recognition",
			Summary:     "The named entity recognition model identifies named entities (people, locations, organizations, and…",
			Description: renderMarkdown(nerDescription),
			Fields: []Field{
				{Name: "sentence", Label: "Sentence", Type: FieldText, Placeholder: `E.g. "John likes and Bill hates ice cream."`},
				{
					Name: "model", Label: "Model", Type: FieldRadio, Optional: true,
					Options: []Option{
						{
							Name:        "elmo-ner",
							Description: "Reimplementation of the NER model described in 'Deep contextualized word representations' by Peters, et. al.",
							Task:        "named-entity-recognition",
						},
						{
							Name:        "fine-grained-ner",
							Description: "This Model identifies a broad range of 16 semantic types in the input text. This model is a reimplementation of Lample (2016) and uses a biLSTM with a CRF layer, character embeddings and ELMo embeddings. It was trained on the Ontonotes 5.0 dataset, and has dev set F1 of 88.2.",
							Task:        "fine-grained-named-entity-recognition",
						},
					},
				},
			},
			Examples: []Example{
				{"sentence": "AllenNLP is a PyTorch-based natural language processing library developed at the Allen Institute for Artificial Intelligence in Seattle."},
				{"sentence": "Did Uriah honestly think he could beat The Legend of Zelda in under three hours?"},
				{"sentence": "Michael Jordan is a professor at Berkeley."},
				{"sentence": "My preferred candidate is Cary Moon, but she won't be the next mayor of Seattle."},
				{"sentence": "If you like Paul McCartney you should listen to the first Wings album."},
				{"sentence": "When I told John that I wanted to move to Alaska, he warned me that I'd have trouble finding a Starbucks there."},
			},
			Techniques:    []Technique{TechniqueInputReduction, TechniqueHotFlip},
			HotFlipTarget: "input",
		},
		{
			Slug:        "textual-entailment",
			Title:       "Textual Entailment",
			Kind:        KindEntailment,
			Task:        "textual-entailment",
			Summary:     "Textual Entailment (TE) takes a pair of sentences and predicts whether the facts in the first necessarily imply the…",
			Description: renderMarkdown(entailmentDescription),
			Fields: []Field{
				{Name: "premise", Label: "Premise", Type: FieldText, Placeholder: `E.g. "A large, gray elephant walked beside a herd of zebras."`},
				{Name: "hypothesis", Label: "Hypothesis", Type: FieldText, Placeholder: `E.g. "The elephant was lost."`},
			},
			Examples: []Example{
				{"premise": "If you help the needy, God will reward you.", "hypothesis": "Giving money to the poor has good consequences."},
				{"premise": "Two women are wandering along the shore drinking iced tea.", "hypothesis": "Two women are sitting on a blanket near some rocks talking about politics."},
				{"premise": "An interplanetary spacecraft is in orbit around a gas giant's icy moon.", "hypothesis": "The spacecraft has the ability to travel between planets."},
				{"premise": "A large, gray elephant walked beside a herd of zebras.", "hypothesis": "The elephant was lost."},
				{"premise": "A handmade djembe was on display at the Smithsonian.", "hypothesis": "Visitors could see the djembe."},
			},
			Techniques:    []Technique{TechniqueInputReduction, TechniqueHotFlip},
			Interpreters:  interpreters,
			HotFlipTarget: "Hypothesis",
		},
	}
}
