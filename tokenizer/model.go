package tokenizer

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	pb "github.com/vikesh-raj/go-sentencepiece-encoder/sentencepiece"
	"google.golang.org/protobuf/proto"
)

// PieceType mirrors the SentencePiece piece type enum.
type PieceType int32

const (
	PieceNormal      PieceType = 1
	PieceUnknown     PieceType = 2
	PieceControl     PieceType = 3
	PieceUserDefined PieceType = 4
	PieceUnused      PieceType = 5
	PieceByte        PieceType = 6
)

func (t PieceType) String() string {
	switch t {
	case PieceNormal:
		return "NORMAL"
	case PieceUnknown:
		return "UNKNOWN"
	case PieceControl:
		return "CONTROL"
	case PieceUserDefined:
		return "USER_DEFINED"
	case PieceUnused:
		return "UNUSED"
	case PieceByte:
		return "BYTE"
	default:
		return "PieceType(" + strconv.Itoa(int(t)) + ")"
	}
}

// ModelType selects the training strategy that produced a model. Values
// follow SentencePiece numbering.
type ModelType int32

const (
	ModelUnigram ModelType = 1
	ModelBPE     ModelType = 2
	ModelWord    ModelType = 3
	ModelChar    ModelType = 4
)

func (t ModelType) String() string {
	switch t {
	case ModelUnigram:
		return "unigram"
	case ModelBPE:
		return "bpe"
	case ModelWord:
		return "word"
	case ModelChar:
		return "char"
	default:
		return "ModelType(" + strconv.Itoa(int(t)) + ")"
	}
}

// ParseModelType parses "unigram", "bpe", "word" or "char".
func ParseModelType(s string) (ModelType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "unigram":
		return ModelUnigram, nil
	case "bpe":
		return ModelBPE, nil
	case "word":
		return ModelWord, nil
	case "char":
		return ModelChar, nil
	default:
		return 0, fmt.Errorf("%w: unknown model type %q", ErrInvalidConfiguration, s)
	}
}

// Default control piece surfaces.
const (
	PadPiece = "<pad>"
	UnkPiece = "<unk>"
	BOSPiece = "<s>"
	EOSPiece = "</s>"

	// UnknownSurface is emitted by Decode for the unknown piece.
	UnknownSurface = " ⁇ "
)

// Piece represents a vocabulary piece from the model.
type Piece struct {
	Piece string
	Score float32
	Type  PieceType
}

// TrainerSpec records how a model was trained.
type TrainerSpec struct {
	Input             []string
	ModelPrefix       string
	ModelType         ModelType
	VocabSize         int32
	CharacterCoverage float32
	SeedSize          int32
	ShrinkingFactor   float32
	NumThreads        int32
	NumSubIterations  int32
	MaxPieceLength    int32
	ByteFallback      bool

	// Control piece ids; -1 marks an absent piece.
	UnkID int32
	BOSID int32
	EOSID int32
	PadID int32

	UnkSurface string
	UnkPiece   string
	BOSPiece   string
	EOSPiece   string
	PadPiece   string
}

// NormalizerSpec records the normalization applied before segmentation.
type NormalizerSpec struct {
	Name                   string
	AddDummyPrefix         bool
	RemoveExtraWhitespaces bool
	EscapeWhitespaces      bool
}

// Model is the persistable form of a trained vocabulary.
type Model struct {
	Pieces         []Piece
	TrainerSpec    TrainerSpec
	NormalizerSpec NormalizerSpec

	// source is the message the model was decoded from. Fields Model does
	// not track are written back from it.
	source *pb.ModelProto
}

// defaultTrainerSpec holds the SentencePiece field defaults applied to fields
// absent from a model file.
func defaultTrainerSpec() TrainerSpec {
	return trainerSpecFromProto(nil)
}

func defaultNormalizerSpec() NormalizerSpec {
	return normalizerSpecFromProto(nil)
}

// LoadModel loads a SentencePiece model from a .model file.
func LoadModel(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading model file: %w", err)
	}

	model, err := UnmarshalModel(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return model, nil
}

// Save writes the model in SentencePiece protobuf format.
func (m *Model) Save(path string) error {
	data, err := m.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing model file: %w", err)
	}
	return nil
}

// SaveVocab writes one "piece<TAB>score" line per id.
func (m *Model) SaveVocab(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating vocab file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing vocab file: %w", cerr)
		}
	}()

	w := bufio.NewWriter(f)
	for _, p := range m.Pieces {
		if _, err := fmt.Fprintf(w, "%s\t%s\n", p.Piece, strconv.FormatFloat(float64(p.Score), 'g', -1, 32)); err != nil {
			return fmt.Errorf("writing vocab file: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("writing vocab file: %w", err)
	}
	return nil
}

// Marshal encodes the model as a SentencePiece ModelProto.
func (m *Model) Marshal() ([]byte, error) {
	data, err := proto.Marshal(m.toProto())
	if err != nil {
		return nil, fmt.Errorf("encoding model: %w", err)
	}
	return data, nil
}

// UnmarshalModel decodes a SentencePiece ModelProto. Absent fields take the
// SentencePiece defaults.
func UnmarshalModel(data []byte) (*Model, error) {
	var mp pb.ModelProto
	if err := proto.Unmarshal(data, &mp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	if len(mp.GetPieces()) == 0 {
		return nil, fmt.Errorf("%w: no pieces", ErrInvalidModel)
	}

	pieces := make([]Piece, len(mp.GetPieces()))
	for i, p := range mp.GetPieces() {
		pieces[i] = Piece{
			Piece: p.GetPiece(),
			Score: p.GetScore(),
			Type:  PieceType(p.GetType()),
		}
	}

	return &Model{
		Pieces:         pieces,
		TrainerSpec:    trainerSpecFromProto(mp.GetTrainerSpec()),
		NormalizerSpec: normalizerSpecFromProto(mp.GetNormalizerSpec()),
		source:         &mp,
	}, nil
}

func (m *Model) toProto() *pb.ModelProto {
	mp := &pb.ModelProto{}
	if m.source != nil {
		mp = proto.Clone(m.source).(*pb.ModelProto)
	}

	mp.Pieces = make([]*pb.ModelProto_SentencePiece, len(m.Pieces))
	for i, p := range m.Pieces {
		mp.Pieces[i] = &pb.ModelProto_SentencePiece{
			Piece: proto.String(p.Piece),
			Score: proto.Float32(p.Score),
			Type:  pb.ModelProto_SentencePiece_Type(p.Type).Enum(),
		}
	}

	if mp.TrainerSpec == nil {
		mp.TrainerSpec = &pb.TrainerSpec{}
	}
	ts, s := mp.TrainerSpec, m.TrainerSpec
	ts.Input = s.Input
	ts.ModelPrefix = nil
	if s.ModelPrefix != "" {
		ts.ModelPrefix = proto.String(s.ModelPrefix)
	}
	ts.ModelType = pb.TrainerSpec_ModelType(s.ModelType).Enum()
	ts.VocabSize = proto.Int32(s.VocabSize)
	ts.CharacterCoverage = proto.Float32(s.CharacterCoverage)
	ts.SeedSentencepieceSize = proto.Int32(s.SeedSize)
	ts.ShrinkingFactor = proto.Float32(s.ShrinkingFactor)
	ts.NumThreads = proto.Int32(s.NumThreads)
	ts.NumSubIterations = proto.Int32(s.NumSubIterations)
	ts.MaxSentencepieceLength = proto.Int32(s.MaxPieceLength)
	ts.ByteFallback = proto.Bool(s.ByteFallback)
	ts.UnkId = proto.Int32(s.UnkID)
	ts.BosId = proto.Int32(s.BOSID)
	ts.EosId = proto.Int32(s.EOSID)
	ts.PadId = proto.Int32(s.PadID)
	ts.UnkSurface = proto.String(s.UnkSurface)
	ts.UnkPiece = proto.String(s.UnkPiece)
	ts.BosPiece = proto.String(s.BOSPiece)
	ts.EosPiece = proto.String(s.EOSPiece)
	ts.PadPiece = proto.String(s.PadPiece)

	if mp.NormalizerSpec == nil {
		mp.NormalizerSpec = &pb.NormalizerSpec{}
	}
	ns, n := mp.NormalizerSpec, m.NormalizerSpec
	ns.Name = proto.String(n.Name)
	ns.AddDummyPrefix = proto.Bool(n.AddDummyPrefix)
	ns.RemoveExtraWhitespaces = proto.Bool(n.RemoveExtraWhitespaces)
	ns.EscapeWhitespaces = proto.Bool(n.EscapeWhitespaces)

	return mp
}

// trainerSpecFromProto reads s through its getters, so a nil or sparse
// message yields the SentencePiece defaults.
func trainerSpecFromProto(s *pb.TrainerSpec) TrainerSpec {
	return TrainerSpec{
		Input:             s.GetInput(),
		ModelPrefix:       s.GetModelPrefix(),
		ModelType:         ModelType(s.GetModelType()),
		VocabSize:         s.GetVocabSize(),
		CharacterCoverage: s.GetCharacterCoverage(),
		SeedSize:          s.GetSeedSentencepieceSize(),
		ShrinkingFactor:   s.GetShrinkingFactor(),
		NumThreads:        s.GetNumThreads(),
		NumSubIterations:  s.GetNumSubIterations(),
		MaxPieceLength:    s.GetMaxSentencepieceLength(),
		ByteFallback:      s.GetByteFallback(),
		UnkID:             s.GetUnkId(),
		BOSID:             s.GetBosId(),
		EOSID:             s.GetEosId(),
		PadID:             s.GetPadId(),
		UnkSurface:        s.GetUnkSurface(),
		UnkPiece:          s.GetUnkPiece(),
		BOSPiece:          s.GetBosPiece(),
		EOSPiece:          s.GetEosPiece(),
		PadPiece:          s.GetPadPiece(),
	}
}

func normalizerSpecFromProto(s *pb.NormalizerSpec) NormalizerSpec {
	name := s.GetName()
	if name == "" {
		name = string(SchemeNFKC)
	}
	return NormalizerSpec{
		Name:                   name,
		AddDummyPrefix:         s.GetAddDummyPrefix(),
		RemoveExtraWhitespaces: s.GetRemoveExtraWhitespaces(),
		EscapeWhitespaces:      s.GetEscapeWhitespaces(),
	}
}
